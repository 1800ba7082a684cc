package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/siddeshwardm/chat-application/config"
	"github.com/siddeshwardm/chat-application/internal/auth"
	"github.com/siddeshwardm/chat-application/internal/db"
	"github.com/siddeshwardm/chat-application/internal/repository"
	"github.com/siddeshwardm/chat-application/internal/services"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func run(name string, args []string) {
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Printf("▶️ Running: %s", name)
	if err := cmd.Run(); err != nil {
		log.Fatalf("❌ %s failed: %v", name, err)
	}
}

func openDB() (*gorm.DB, error) {
	conn, err := db.Open(config.LoadConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

func main() {
	app := &cli.App{
		Name:  "chatctl",
		Usage: "Chat server CLI for local dev tasks",
		Commands: []*cli.Command{
			{
				Name:  "genkey",
				Usage: "Generate a random JWT_SECRET",
				Action: func(c *cli.Context) error {
					fmt.Println("🔑 JWT_SECRET=" + auth.GenerateSecureToken())
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "Create or update the users and messages tables",
				Action: func(c *cli.Context) error {
					conn, err := openDB()
					if err != nil {
						return err
					}
					if err := db.Migrate(conn); err != nil {
						return err
					}
					log.Println("✅ migration complete")
					return nil
				},
			},
			{
				Name:  "cleanup-users",
				Usage: "Delete demo users, or everyone except one kept user, along with their messages",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "keep-email", Usage: "keep only the user with this email"},
					&cli.StringFlag{Name: "keep-id", Usage: "keep only the user with this id"},
					&cli.BoolFlag{Name: "demo", Usage: "delete demo/seed accounts only (default)"},
				},
				Action: func(c *cli.Context) error {
					conn, err := openDB()
					if err != nil {
						return err
					}
					opts := services.CleanupOptions{
						KeepID:    c.String("keep-id"),
						KeepEmail: c.String("keep-email"),
					}
					res, err := services.CleanupUsers(context.Background(), repository.NewUserRepo(conn), opts)
					if err != nil {
						return fmt.Errorf("cleanup-users: %w", err)
					}
					if res.Kept != nil {
						fmt.Printf("Kept 1 user: %s. Deleted %d users and %d messages.\n", res.Kept.Email, res.Users, res.Messages)
						return nil
					}
					prefix := "(default) "
					if c.Bool("demo") {
						prefix = ""
					}
					fmt.Printf("%sDeleted %d demo/dummy users and %d messages.\n", prefix, res.Users, res.Messages)
					return nil
				},
			},
			{
				Name:  "server",
				Usage: "Start main API server",
				Action: func(c *cli.Context) error {
					run("server", []string{"go", "run", "./cmd/server"})
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
