// This file is a helper for running the service with testcontainers.
// It is used by the standalone cmd/testcontainers executable and by the integration tests.
// Expects environment variables to be loaded from .env files.
//

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/recipe-journal/data"
	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	RedisContainer      testcontainers.Container
	AuthorizerContainer testcontainers.Container
	AppContainer        testcontainers.Container
	AppBuilderContainer testcontainers.Container
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AppContainer != nil {
		if err := tc.AppContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate recipe-journal: %v", err)
		}
	}
	if tc.AppBuilderContainer != nil {
		if err := tc.AppBuilderContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate recipe-journal builder: %v", err)
		}
	}
	if tc.AuthorizerContainer != nil {
		if err := tc.AuthorizerContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Authorizer: %v", err)
		}
	}
	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Redis: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// DatabaseContainer is a started database with its host-mapped address
type DatabaseContainer struct {
	Container testcontainers.Container
	Type      string
	Host      string
	Port      nat.Port
}

// AppConfig returns a service configuration that connects to the container as the application user
func (dc *DatabaseContainer) AppConfig() *config.Config {
	return &config.Config{
		DBType:            dc.Type,
		DBHost:            dc.Host,
		DBPort:            dc.Port.Port(),
		DBDatabase:        appDatabase(),
		DBUser:            appUser(),
		DBPassword:        appPassword(),
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
	}
}

// StartDatabase starts the DB_TYPE database from DB_IMAGE and creates the
// application database and user. When networkName is set the container joins
// that network under the DB_HOST alias.
func StartDatabase(ctx context.Context, t *testing.T, networkName string) (*DatabaseContainer, error) {
	dbType := envOr("DB_TYPE", "postgres")
	tcpDbPort, err := nat.NewPort("tcp", envOr("DB_PORT", defaultDBPort(dbType)))
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	req := testcontainers.ContainerRequest{
		Image:        envOr("DB_IMAGE", defaultDBImage(dbType)),
		ExposedPorts: []string{string(tcpDbPort)},
		Env:          getDBInitEnvMap(dbType),
		WaitingFor:   wait.ForListeningPort(tcpDbPort).WithStartupTimeout(60 * time.Second),
	}
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{
			networkName: {envOr("DB_HOST", "database")},
		}
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start database: %w", err)
	}

	dc := &DatabaseContainer{Container: dbContainer, Type: dbType}
	dc.Host, _ = dbContainer.Host(ctx)
	dc.Port, _ = dbContainer.MappedPort(ctx, tcpDbPort)

	switch dbType {
	case "postgres":
		err = performPostgresDBInit(dc)
	case "mysql", "mariadb":
		err = performMySqlDBInit(dc)
	default:
		err = fmt.Errorf("unsupported DB_TYPE %q for containers", dbType)
	}
	if err != nil {
		_ = dbContainer.Terminate(ctx)
		return nil, err
	}

	logMessage(t, "Database %s ready at %s:%s", dbType, dc.Host, dc.Port.Port())
	return dc, nil
}

// RedisContainer is a started Redis server with its host-mapped URL
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
}

// StartRedis starts a Redis server from image. When networkName is set the
// container joins that network under the "redis" alias.
func StartRedis(ctx context.Context, t *testing.T, image, networkName string) (*RedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{
			networkName: {"redis"},
		}
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis: %w", err)
	}

	host, _ := redisContainer.Host(ctx)
	port, _ := redisContainer.MappedPort(ctx, "6379/tcp")
	rc := &RedisContainer{
		Container: redisContainer,
		URL:       fmt.Sprintf("redis://%s:%s/0", host, port.Port()),
	}
	logMessage(t, "REDIS_URL=%s", rc.URL)
	return rc, nil
}

func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	debugContainer := os.Getenv("DEBUG_CONTAINER")

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	// Create, start and initialize the Database container
	dbType := envOr("DB_TYPE", "postgres")
	dbNetworkName := envOr("DB_HOST", "database")
	dbInternalPort := envOr("DB_PORT", defaultDBPort(dbType))
	dc, err := StartDatabase(ctx, t, networkName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start database")
	}
	testContainers.DBContainer = dc.Container

	// Redis is optional, it backs the extraction cache when REDIS_IMAGE is set
	redisURL := ""
	if redisImage := os.Getenv("REDIS_IMAGE"); redisImage != "" {
		rc, err := StartRedis(ctx, t, redisImage, networkName)
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to start Redis")
		}
		testContainers.RedisContainer = rc.Container
		redisURL = "redis://redis:6379/0"
	}

	// Create and start the Authorizer container
	authzNetworkName := "authorizer"
	tcpAuthzPort, err := nat.NewPort("tcp", envOr("AUTHZ_PORT", "8080"))
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create Authorizer port")
	}
	authzLogLevel := "info"
	if debugContainer == "true" {
		authzLogLevel = "debug"
	}
	authorizerContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          tcpAuthzPort.Port(),
				"DATABASE_TYPE": dbType,
				"DATABASE_NAME": authzDatabase(),
				"DATABASE_URL":  authzDatabaseURL(dbType, dbNetworkName, dbInternalPort),
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     authzLogLevel,
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start Authorizer")
	}
	testContainers.AuthorizerContainer = authorizerContainer

	// Log the localhost and mapped ports for Authorizer for test processes
	authzHost, _ := authorizerContainer.Host(ctx)
	authzPort, _ := authorizerContainer.MappedPort(ctx, tcpAuthzPort)
	logMessage(t, "AUTHZ_URL=%s:%s", authzHost, authzPort.Port())

	imageName := "recipe-journal-test:latest"

	// Check if image exists
	imageExists, err := imageExists(ctx, imageName)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to check if image exists")
	}

	appPortNumber := envOr("PORT", "3000")
	tcpAppPort, err := nat.NewPort("tcp", appPortNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create recipe-journal port")
	}

	appExposedPorts := []string{string(tcpAppPort)}
	if debugContainer == "true" {
		appExposedPorts = append(appExposedPorts, "2345/tcp")
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer == "true" {
			hostConfig.PortBindings = nat.PortMap{
				"2345/tcp": []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "2345"},
				},
			}
			hostConfig.CapAdd = []string{"SYS_PTRACE"}
			hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	var waitStrategy wait.Strategy
	waitStrategy = wait.ForHTTP("/health").WithPort(tcpAppPort).WithStartupTimeout(30 * time.Second)
	if debugContainer == "true" {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	appContainerRequest := testcontainers.ContainerRequest{
		ExposedPorts: appExposedPorts,
		Env: map[string]string{
			"APP_ENV":             "production",
			"DB_TYPE":             dbType,
			"DB_HOST":             dbNetworkName,
			"DB_PORT":             dbInternalPort,
			"DB_DATABASE":         appDatabase(),
			"DB_USER":             appUser(),
			"DB_PASSWORD":         appPassword(),
			"DB_CONNECTION_LIMIT": envOr("DB_CONNECTION_LIMIT", "10"),
			"AUTHZ_URL":           fmt.Sprintf("http://%s:%s", authzNetworkName, tcpAuthzPort.Port()),
			"AUTHZ_CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
			"LLM_API_KEY":         os.Getenv("LLM_API_KEY"),
			"LLM_BASE_URL":        envOr("LLM_BASE_URL", "https://api.openai.com/v1"),
			"REDIS_URL":           redisURL,
			"PORT":                appPortNumber,
		},
		HostConfigModifier: hostConfigModifier,
		WaitingFor:         waitStrategy,
		Networks:           []string{networkName},
	}

	if debugContainer == "true" {
		appContainerRequest.Entrypoint = []string{
			"/usr/local/bin/dlv",
			"--listen=:2345",
			"--headless=true",
			"--api-version=2",
			"--accept-multiclient",
			"exec",
			"./recipe-journal",
		}
	}

	if !imageExists {
		resourceReaperSessionID := uuid.New().String()

		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &resourceReaperSessionID,
		}
		if debugContainer == "true" {
			buildArgs["DEBUG"] = &debugContainer
		}

		buildContext := os.Getenv("TESTCONTAINERS_BUILD_CONTEXT")
		if buildContext == "" {
			buildContext = "../.."
		}

		logMessage(t, "Image %s does not exist, building...", imageName)
		builderContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "recipe-journal-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder"
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to build recipe-journal-test-builder")
		}
		testContainers.AppBuilderContainer = builderContainer

		imageNameParts := strings.Split(imageName, ":")
		appContainerRequest.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       imageNameParts[0],
			Tag:        imageNameParts[1],
			KeepImage:  true,
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", imageName)
		appContainerRequest.Image = imageName
	}

	appContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: appContainerRequest,
		Started:          true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start recipe-journal")
	}
	testContainers.AppContainer = appContainer

	appHost, _ := appContainer.Host(ctx)
	appPort, _ := appContainer.MappedPort(ctx, tcpAppPort)
	logMessage(t, "BASE_URL=%s:%s", appHost, appPort.Port())

	logMessage(t, "recipe-journal testcontainers started successfully")
	return testContainers, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// The embedded initdb scripts create these names
func appDatabase() string { return envOr("DB_DATABASE", "recipe_journal") }
func appUser() string     { return envOr("DB_USER", "recipe_app") }
func appPassword() string { return envOr("DB_PASSWORD", "recipe_app") }
func rootPassword() string {
	return envOr("DB_ROOT_PASSWORD", "rootpass")
}
func authzDatabase() string { return envOr("AUTHZ_DATABASE", "authorizer") }

func defaultDBPort(dbType string) string {
	if dbType == "postgres" {
		return "5432"
	}
	return "3306"
}

func defaultDBImage(dbType string) string {
	if dbType == "postgres" {
		return "postgres:16-alpine"
	}
	return "mariadb:11"
}

func authzDatabaseURL(dbType, host, port string) string {
	if dbType == "postgres" {
		return fmt.Sprintf("postgres://postgres:%s@%s:%s/%s?sslmode=disable", rootPassword(), host, port, authzDatabase())
	}
	return fmt.Sprintf("root:%s@tcp(%s:%s)/%s", rootPassword(), host, port, authzDatabase())
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": rootPassword(),
			"POSTGRES_USER":     "postgres",
		}
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": rootPassword(),
		}
	}
	return nil
}

func performMySqlDBInit(dc *DatabaseContainer) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword(), dc.Host, dc.Port.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect to MariaDB for setup: %w", err)
	}
	defer db.Close()

	if err := waitForPing(db); err != nil {
		return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
	}

	if err := executeSQL(db, data.InitdbMariaDB); err != nil {
		return fmt.Errorf("failed to execute %s init sql: %w", dc.Type, err)
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", authzDatabase())); err != nil {
		return fmt.Errorf("failed to create %s: %w", authzDatabase(), err)
	}
	return nil
}

func performPostgresDBInit(dc *DatabaseContainer) error {
	gdb, err := database.Connect(&config.Config{
		DBType:            "postgres",
		DBHost:            dc.Host,
		DBPort:            dc.Port.Port(),
		DBDatabase:        "postgres",
		DBUser:            "postgres",
		DBPassword:        rootPassword(),
		DBConnectionLimit: 1,
		DBLogLevel:        "silent",
	}, zap.NewNop())
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres for setup: %w", err)
	}
	db, err := gdb.DB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := waitForPing(db); err != nil {
		return fmt.Errorf("Postgres not ready after 30 seconds: %w", err)
	}

	// CREATE DATABASE cannot run inside a transaction block, so statements go one at a time
	if err := executeSQL(db, data.InitdbPostgres); err != nil {
		return fmt.Errorf("failed to execute %s init sql: %w", dc.Type, err)
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", authzDatabase())); err != nil {
		return fmt.Errorf("failed to create %s: %w", authzDatabase(), err)
	}
	return nil
}

func waitForPing(db *sql.DB) error {
	var err error
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return err
}

// executeSQL runs an initdb script one statement at a time.
// Full-line "--" comments are dropped; statements end with ";".
func executeSQL(db *sql.DB, script string) error {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	for _, q := range strings.Split(strings.Join(lines, "\n"), ";") {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
