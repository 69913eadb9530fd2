package sqlgateway

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"k8s.io/client-go/kubernetes"
)

// PrimaryContainerName is the well-known container name inside the
// primary pod that runs postgres.
const PrimaryContainerName = "postgres"

const (
	attachRetries = 10
	attachBackoff = 5 * time.Millisecond
)

// PsqlResult is the outcome of a single query.
type PsqlResult struct {
	Stdout  string
	Stderr  string
	Success bool
}

// Gateway executes SQL against an instance's primary pod.
type Gateway struct {
	Clientset kubernetes.Interface
	Execer    PodExecer
}

// NewGateway builds a Gateway.
func NewGateway(clientset kubernetes.Interface, execer PodExecer) *Gateway {
	return &Gateway{Clientset: clientset, Execer: execer}
}

// Psql runs query against db on the instance's primary pod, retrying a
// bounded number of times on transient attach failures (spec.md §4.2,
// §5: 10 retries x 5ms).
func (g *Gateway) Psql(ctx context.Context, namespace, instanceName, db, query string) (PsqlResult, error) {
	pod, err := FindPrimaryPod(ctx, g.Clientset, namespace, instanceName)
	if err != nil {
		return PsqlResult{}, err
	}

	// Default aligned output (headers + "(N rows)" footer) is required
	// by ParseTable.
	argv := []string{"psql", "-d", db, "-c", query}

	var lastErr error
	for attempt := 0; attempt < attachRetries; attempt++ {
		res, execErr := g.Execer.Exec(ctx, namespace, pod.Name, PrimaryContainerName, argv)
		if execErr == nil {
			return PsqlResult{Stdout: res.Stdout, Stderr: res.Stderr, Success: res.ExitOK}, nil
		}
		lastErr = execErr

		select {
		case <-ctx.Done():
			return PsqlResult{}, ctx.Err()
		case <-time.After(attachBackoff):
		}
	}
	return PsqlResult{}, errors.Wrapf(lastErr, "exhausted %d attach retries against pod %s", attachRetries, pod.Name)
}
