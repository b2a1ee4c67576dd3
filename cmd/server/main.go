package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/skostadinov0141/soulforger-sr6-backend-api/auth"
	"github.com/skostadinov0141/soulforger-sr6-backend-api/properties"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(cfg.MongoTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	// Startup diagnostic: refuse to start without a reachable store.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}

	db := client.Database(cfg.MongoDB)

	secrets, err := auth.LoadSecrets(ctx, db, cfg.TokenTTL)
	if err != nil {
		return err
	}

	store := auth.NewMongoAccountStore(db)
	tokens := auth.NewTokenService(secrets)
	accounts := auth.NewAccounts(store, tokens, secrets)
	authController := auth.NewController(accounts)
	propsController := properties.NewController(properties.NewStore(db), accounts)

	app := fiber.New(fiber.Config{
		AppName: "soulforger-sr6-backend-api",
	})
	app.Use(cors.New())

	auth.RegisterRoutes(app, authController)
	properties.RegisterRoutes(app, propsController)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("server: received %s, shutting down", sig)
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	}
}
