// Helpers for running tests against real backing services with
// testcontainers. Expects DB_IMAGE in the environment (defaults to
// mariadb:11).

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	rootPassword = "rootpass"
	appUser      = "navi"
	appPassword  = "navipass"
)

// MariaDBContainer wraps a disposable MariaDB instance.
type MariaDBContainer struct {
	Container testcontainers.Container
	Host      string
	Port      nat.Port
	Database  string
}

// Terminate stops and removes the container.
func (c *MariaDBContainer) Terminate(t *testing.T) {
	t.Helper()
	if c.Container == nil {
		return
	}
	if err := c.Container.Terminate(context.Background()); err != nil {
		t.Logf("Failed to terminate MariaDB container: %v", err)
	}
}

// Config returns service configuration pointing at the container.
func (c *MariaDBContainer) Config() *config.Config {
	return &config.Config{
		DBType:            "mysql",
		DBHost:            c.Host,
		DBPort:            c.Port.Port(),
		DBDatabase:        c.Database,
		DBUser:            appUser,
		DBPassword:        appPassword,
		DBConnectionLimit: 5,
	}
}

// StartMariaDB starts a MariaDB container with a uniquely named
// database and waits until the server accepts connections.
func StartMariaDB(t *testing.T) *MariaDBContainer {
	t.Helper()
	ctx := context.Background()

	imageName := os.Getenv("DB_IMAGE")
	if imageName == "" {
		imageName = "mariadb:11"
	}

	if exists, err := imageExists(ctx, imageName); err == nil && !exists {
		t.Logf("Image %s not present locally, it will be pulled", imageName)
	}

	dbName := "navi_test_" + strings.ReplaceAll(uuid.New().String()[:8], "-", "")
	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		t.Fatalf("Failed to create DB port: %v", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        imageName,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": rootPassword,
				"MYSQL_DATABASE":      dbName,
				"MYSQL_USER":          appUser,
				"MYSQL_PASSWORD":      appPassword,
			},
			WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MariaDB container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	c := &MariaDBContainer{Container: container, Host: host, Port: port, Database: dbName}
	if err := c.waitReady(); err != nil {
		c.Terminate(t)
		t.Fatalf("MariaDB not ready: %v", err)
	}
	return c
}

// waitReady pings until the server actually answers queries; the port
// opens before authentication is available.
func (c *MariaDBContainer) waitReady() error {
	dsn := fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword, c.Host, c.Port.Port())
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("server not ready after 30 seconds: %w", err)
}

// imageExists checks whether the image is already present locally.
func imageExists(ctx context.Context, name string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == name {
				return true, nil
			}
		}
	}
	return false, nil
}
