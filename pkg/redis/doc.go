// Package redis connects the platform to the Redis server that backs the
// shared rate limit counters and the tenant settings store.
//
// Connect retries with the configured interval until the server answers a
// ping or the connect timeout elapses, so a service starting alongside
// Redis does not crash-loop. Configuration comes from the environment via
// the Config struct.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	limits := ratelimit.NewRedisStore(client)
//	settings := settings.NewRedisStore(client)
//
// Healthcheck returns a probe for readiness endpoints.
package redis
