package protocal

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"directline-bridge/configs"
	httpAdapter "directline-bridge/internal/adapters/input/http"
	"directline-bridge/internal/adapters/output/directline"
	"directline-bridge/internal/adapters/output/identity"
	lineAdapter "directline-bridge/internal/adapters/output/line"
	"directline-bridge/internal/adapters/output/memory"
	"directline-bridge/internal/adapters/output/postgres"
	"directline-bridge/internal/adapters/output/webchat"
	"directline-bridge/internal/application"
	"directline-bridge/internal/domain"
	"directline-bridge/internal/ports/output"
	"directline-bridge/pkg/database_driver/gorm"
	"directline-bridge/pkg/httpclient"
	"directline-bridge/pkg/metrics"
	"directline-bridge/pkg/tokencell"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	gormio "gorm.io/gorm"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	if err := configs.InitViper("./configs", cfg.ENV); err != nil {
		return err
	}
	conf := configs.GetViper()

	if conf.App.Env != "local" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if conf.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Info(conf.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	// Optional audit trail
	var (
		dbGorm *gormio.DB
		audit  output.AuditRepository
	)
	if conf.Postgres.Enabled {
		dbConGorm, err := gorm.ConnectToPostgreSQL(
			conf.Postgres.Host,
			conf.Postgres.Port,
			conf.Postgres.Username,
			conf.Postgres.Password,
			conf.Postgres.DbName,
			conf.Postgres.SSLMode,
		)
		if err != nil {
			return err
		}
		defer gorm.DisconnectPostgres(dbConGorm.Postgres)

		repo, err := postgres.NewAuditRepository(dbConGorm.Postgres)
		if err != nil {
			return err
		}
		dbGorm = dbConGorm.Postgres
		audit = repo
	}

	httpClient := httpclient.New(conf.HTTP.Timeout)

	sessions := memory.NewMemorySessionStore(conf.Session.Retention)
	sessions.StartCleanupRoutine(conf.Session.SweepInterval)
	defer sessions.Close()

	// Token lifecycle
	identityCell := tokencell.New[domain.AccessToken]("identity")
	webchatCell := tokencell.New[domain.AccessToken]("webchat")

	refreshers := []*application.Refresher{
		application.NewRefresher(
			identity.NewClient(conf.Identity, httpClient),
			identityCell,
			application.ExpiryPolicy{Margin: conf.Identity.AuthMargin},
			conf.Identity.AuthFailSleep,
		),
		application.NewRefresher(
			webchat.NewClient(conf.WebChat, httpClient),
			webchatCell,
			application.FixedPolicy{Interval: conf.WebChat.RefreshInterval},
			conf.Identity.AuthFailSleep,
		),
	}

	// Conversation backends
	directLineBackend, err := directline.NewDirectLine(conf.DirectLine, httpClient, sessions)
	if err != nil {
		return err
	}
	webChatBackend, err := directline.NewWebChat(conf.WebChat, httpClient, sessions, webchatCell)
	if err != nil {
		return err
	}

	if conf.DirectLine.MaintainToken {
		refreshers = append(refreshers, application.NewRefresher(
			directline.NewTokenSource(directLineBackend),
			tokencell.New[domain.AccessToken](directline.ChannelDirectLine+"_token"),
			application.ExpiryPolicy{Margin: conf.Identity.AuthMargin},
			conf.Identity.AuthFailSleep,
		))
	}
	supervisor := application.NewTokenSupervisor(refreshers...)

	conversationClients := map[string]output.ConversationClient{
		directline.ChannelDirectLine: directline.NewConversationClient(directLineBackend),
		directline.ChannelWebChat:    directline.NewConversationClient(webChatBackend),
	}

	// Wire up the hexagonal architecture layers
	srv := application.NewRelayService(
		[]output.ConversationClient{
			conversationClients[directline.ChannelDirectLine],
			conversationClients[directline.ChannelWebChat],
		},
		audit,
		supervisor,
	)
	hdl := httpAdapter.New(srv, dbGorm)

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	bridge := app.Group("/v1/api")
	{
		bridge.Get("/tokens", hdl.TokenStatus)
		bridge.Post("/:channel/conversations", hdl.CreateConversation)
		bridge.Post("/:channel/tokens", hdl.CreateToken)
		bridge.Get("/:channel/conversations/:id", hdl.ReconnectConversation)
		bridge.Post("/:channel/conversations/:id/refresh", hdl.RefreshToken)
		bridge.Post("/:channel/conversations/:id/activities", hdl.SendActivity)
		bridge.Get("/:channel/conversations/:id/activities", hdl.ReceiveActivity)
	}

	// LINE webhook endpoint
	if conf.Line.Enabled {
		lineClient, err := lineAdapter.NewLineClientAdapter(conf.Line.ChannelToken)
		if err != nil {
			return fmt.Errorf("failed to create LINE client: %w", err)
		}
		lineWebhookSrv := application.NewLineWebhookService(
			lineClient,
			conversationClients[conf.Line.Channel],
			memory.NewMemoryBindingStore(),
		)
		lineWebhookHdl := httpAdapter.NewLineWebhookHandler(lineWebhookSrv, conf.Line.ChannelSecret)

		webhook := app.Group("/webhook")
		{
			webhook.Post("/line", lineWebhookHdl.HandleWebhook)
		}
	}

	// A supervisor exit stops the server; a signal stops both.
	supervisorErr := make(chan error, 1)
	go func() {
		supervisorErr <- supervisor.Run(ctx)
		stop()
	}()
	go func() {
		<-ctx.Done()
		logrus.Info("Gracefull shut down ...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("Error when shutdown server: %v", err)
		}
	}()

	logrus.Infof("Listening on port: %s", conf.App.Port)
	if err := app.Listen(":" + conf.App.Port); err != nil {
		return err
	}

	stop()
	if err := <-supervisorErr; err != nil {
		return fmt.Errorf("token supervisor: %w", err)
	}
	return nil
}
