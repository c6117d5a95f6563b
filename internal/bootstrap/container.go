package bootstrap

import (
	"context"
	"log"

	"electrician-be/internal/config"
	"electrician-be/internal/controller"
	"electrician-be/internal/handler"
	"electrician-be/internal/pkg/logger"
	"electrician-be/internal/pkg/serverutils"
	"electrician-be/internal/repository/memory"
	"electrician-be/internal/repository/unitofwork"
	"electrician-be/internal/service"
	"electrician-be/internal/websocket"
	pktNats "electrician-be/pkg/nats"
	"electrician-be/pkg/ratelimit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	ChatSocketHandler *handler.ChatSocketHandler

	// Background services, started by Start
	ChatService     service.IChatService
	Hub             *websocket.Hub
	EventRelay      service.IChatEventRelay
	ReceiptConsumer *service.ReadReceiptConsumer

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires the chat stack. ctx is the process lifetime; socket sessions end with it.
// NATS and Redis are optional: without them events are not relayed and sends are not rate limited.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	wsLogger := logger.NewIsolatedLogger(cfg.App.SocketLogFilePath)
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = wsLogger.Sync() }, func() { _ = sysLogger.Sync() })

	uowFactory := unitofwork.NewRepositoryFactory(db)
	roomCache := memory.NewRoomCache(cfg.Chat.RoomCacheTTL)

	// 2. In-process event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: int64(cfg.Chat.SendBuffer)},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	var chatEvents service.ChatEventPublisher
	natsPub, natsSub := connectNats(cfg.App.NatsURL, sysLogger, c)
	if natsPub != nil {
		chatEvents = service.NewChatEventPublisher(pubSub, cfg.Chat.EventTopic)
		c.EventRelay = service.NewChatEventRelay(pubSub, cfg.Chat.EventTopic, natsPub, sysLogger)
	}

	limiter := newRateLimiter(ctx, cfg, c)

	// 4. Chat services
	hub := websocket.NewHub(wsLogger)
	resolver := service.NewRoomResolver(uowFactory, roomCache, sysLogger)
	store := service.NewMessageStore(uowFactory, resolver, sysLogger)
	history := service.NewHistoryService(uowFactory, resolver, cfg.Chat.HistoryDefaultSize, cfg.Chat.HistoryMaxSize, sysLogger)

	var rateLimiter service.RateLimiter
	if limiter != nil {
		rateLimiter = limiter
	}
	chatService := service.NewChatService(uowFactory, store, history, hub, chatEvents, rateLimiter, sysLogger)

	if natsSub != nil {
		c.ReceiptConsumer = service.NewReadReceiptConsumer(natsSub, chatService, cfg.Chat.ReceiptDurable, sysLogger)
	}

	// 5. Transport
	c.ChatService = chatService
	c.Hub = hub
	c.ChatController = controller.NewChatController(chatService, serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret))
	c.ChatSocketHandler = handler.NewChatSocketHandler(ctx, chatService, hub, cfg.Auth.JwtSecret, cfg.Chat.SendBuffer, wsLogger)

	return c
}

// Start launches the hub loop and the event consumers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)

	if c.EventRelay != nil {
		go func() {
			log.Println("Background: Starting chat event relay...")
			if err := c.EventRelay.Consume(ctx); err != nil {
				log.Printf("Background chat event relay error: %v", err)
			}
		}()
	}

	if c.ReceiptConsumer != nil {
		if err := c.ReceiptConsumer.Start(ctx); err != nil {
			log.Printf("[WARN] Read receipt consumer not started: %v", err)
		}
	}
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func connectNats(url string, sysLogger *logger.ZapLogger, c *Container) (*pktNats.Publisher, *pktNats.Subscriber) {
	nc, err := pktNats.Connect(url)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
		return nil, nil
	}
	c.closers = append(c.closers, func() { nc.Close() })

	pub, err := pktNats.NewPublisher(nc, sysLogger.Named("nats.publisher"))
	if err != nil {
		log.Printf("[WARN] Failed to create NATS publisher: %v", err)
		return nil, nil
	}
	c.closers = append(c.closers, pub.Close)

	sub, err := pktNats.NewSubscriber(nc, sysLogger.Named("nats.subscriber"))
	if err != nil {
		log.Printf("[WARN] Failed to create NATS subscriber: %v", err)
		return pub, nil
	}
	c.closers = append(c.closers, sub.Close)

	if nc.Status() != nats.CONNECTED {
		log.Printf("[WARN] NATS not reachable yet at %s, retrying in background", url)
	}
	return pub, sub
}

func newRateLimiter(ctx context.Context, cfg *config.Config, c *Container) *ratelimit.Limiter {
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (rate limiting fails open)", err)
	}

	limiter, err := ratelimit.NewLimiter(rdb, "chat:rate:", cfg.Chat.RateLimit, cfg.Chat.RateWindow)
	if err != nil {
		log.Printf("[WARN] Rate limiting disabled: %v", err)
		return nil
	}
	return limiter
}
