// Package redis connects a go-redis client with retries. The push token
// store keeps device tokens in Redis hashes through this client.
//
//	client, err := redis.Connect(ctx, config.MustLoad[redis.Config]())
//	if err != nil {
//		return err
//	}
//	tokens := push.NewRedisTokenStore(client)
package redis
