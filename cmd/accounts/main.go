// Command accounts manages the Instagram accounts the bot replies for.
//
// Usage:
//
//	accounts -db $DATABASE_URL list
//	accounts -db $DATABASE_URL upsert -id 1784140... -username brand -token IGQW...
//	accounts -db $DATABASE_URL delete -id 1784140...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/crypto"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/database"
)

func main() {
	var (
		databaseURL = flag.String("db", os.Getenv("DATABASE_URL"), "PostgreSQL URL (or set DATABASE_URL env)")
		keyHex      = flag.String("key", os.Getenv("TOKEN_ENCRYPTION_KEY"), "hex token encryption key (or set TOKEN_ENCRYPTION_KEY env)")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Database URL required (-db or DATABASE_URL env)")
	}
	if flag.NArg() < 1 {
		log.Fatal("Subcommand required: list, upsert, or delete")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cryptoSvc := crypto.Service(crypto.NoopService{})
	if *keyHex != "" {
		svc, err := crypto.NewAesGcmCryptoService(*keyHex)
		if err != nil {
			log.Fatalf("Failed to create crypto service: %v", err)
		}
		cryptoSvc = svc
	}
	repo := database.NewAccountRepo(db, cryptoSvc)

	switch flag.Arg(0) {
	case "list":
		runList(ctx, repo)
	case "upsert":
		runUpsert(ctx, repo, flag.Args()[1:])
	case "delete":
		runDelete(ctx, repo, flag.Args()[1:])
	default:
		log.Fatalf("Unknown subcommand %q (want list, upsert, or delete)", flag.Arg(0))
	}
}

func runList(ctx context.Context, repo *database.AccountRepo) {
	accounts, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts configured")
		return
	}
	for _, account := range accounts {
		fmt.Printf("%s\t%s\tupdated %s\n",
			account.InstagramAccountID, account.Username, account.UpdatedAt.Format(time.RFC3339))
	}
}

func runUpsert(ctx context.Context, repo *database.AccountRepo, args []string) {
	fs := flag.NewFlagSet("upsert", flag.ExitOnError)
	id := fs.String("id", "", "Instagram account ID")
	username := fs.String("username", "", "account username")
	token := fs.String("token", "", "Graph API access token")
	_ = fs.Parse(args)

	if *id == "" || *token == "" {
		log.Fatal("upsert requires -id and -token")
	}

	account, err := repo.Upsert(ctx, *id, *username, *token)
	if err != nil {
		log.Fatalf("Failed to upsert account: %v", err)
	}
	slog.Info("Account saved", "account_id", account.InstagramAccountID, "username", account.Username)
}

func runDelete(ctx context.Context, repo *database.AccountRepo, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Instagram account ID")
	_ = fs.Parse(args)

	if *id == "" {
		log.Fatal("delete requires -id")
	}

	if err := repo.Delete(ctx, *id); err != nil {
		log.Fatalf("Failed to delete account: %v", err)
	}
	slog.Info("Account deleted", "account_id", *id)
}
