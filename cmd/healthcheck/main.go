package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/database"
	"github.com/teraonavi/navi-admin/internal/objectstore"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	credStore, err := credentials.NewDynamoStore(cfg)
	if err != nil {
		log.Fatalf("Failed to build credential store: %v", err)
	}
	creds := credentials.NewManager(credStore, cfg.DynamoTimeout)

	store, err := objectstore.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build object store client: %v", err)
	}

	// Verify the server itself is listening
	if err := utils.PingService("http://localhost:"+cfg.Port, 1500*time.Millisecond); err != nil {
		log.Printf("Server port not reachable: %v", err)
	}

	// Perform health check
	result := services.HealthCheck(context.Background(), cfg, db, creds, store)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
