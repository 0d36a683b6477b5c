package progress_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/readprogress/pkg/progresssdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the service image in a container and drive it through
 * progresssdk. The image is built once in TestMain.
 */

const (
	testImageName = "readprogress-test:latest"
	servicePort   = "2345/tcp"

	sessionSecret  = "e2e-session-secret-0123456789abcdef"
	masterPassword = "e2e-master-password"
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stdout, "skipping container tests in short mode")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building progress service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up progress service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/progress/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// baseEnv is the minimum configuration the service refuses to start without.
func baseEnv() map[string]string {
	return map[string]string{
		"MASTER_PASSWORD": masterPassword,
		"SESSION_SECRET":  sessionSecret,
		"PEPPER_FILE":     "/tmp/pepper",
		"ENV":             "staging",
		"LOG_LEVEL":       "info",
		"LOG_FORMAT":      "json",
	}
}

// relaxedEnv lifts the rate limits; most tests send bursts.
func relaxedEnv() map[string]string {
	env := baseEnv()
	env["RATELIMIT_STRICT_REQUESTS"] = "1000"
	env["RATELIMIT_STRICT_BURST"] = "1000"
	env["RATELIMIT_MODERATE_REQUESTS"] = "1000"
	env["RATELIMIT_MODERATE_BURST"] = "1000"
	return env
}

// setupContainer starts the service with env and returns a client for it.
func setupContainer(t *testing.T, env map[string]string) *progresssdk.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{servicePort},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort(servicePort).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, servicePort)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return progresssdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

// requireStatus checks that err is an APIError with the given status.
func requireStatus(t *testing.T, err error, status int) *progresssdk.APIError {
	t.Helper()
	var apiErr *progresssdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Message)
	return apiErr
}
