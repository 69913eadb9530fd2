// Package sqlgateway executes SQL against a cluster's primary pod
// through the Kubernetes exec subresource and parses the tabular
// output psql produces (C2).
package sqlgateway

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"
)

// ExecResult is the outcome of a single exec invocation.
type ExecResult struct {
	Stdout  string
	Stderr  string
	ExitOK  bool
}

// PodExecer runs argv inside container of pod and returns its output.
// This is the seam the teacher's Reconciler.PodExec field models; it is
// satisfied by *Client below in production and by a fake in tests.
type PodExecer interface {
	Exec(ctx context.Context, namespace, pod, container string, argv []string) (ExecResult, error)
}

// Client is the production PodExecer, backed by client-go's SPDY exec.
type Client struct {
	Clientset kubernetes.Interface
	Config    *rest.Config
}

// NewClient builds a Client from a rest.Config.
func NewClient(cfg *rest.Config) (*Client, error) {
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "building clientset for sql gateway")
	}
	return &Client{Clientset: cs, Config: cfg}, nil
}

// Exec implements PodExecer.
func (c *Client) Exec(ctx context.Context, namespace, pod, container string, argv []string) (ExecResult, error) {
	req := c.Clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Name(pod).
		Namespace(namespace).
		SubResource("exec")

	req.VersionedParams(&corev1.PodExecOptions{
		Container: container,
		Command:   argv,
		Stdin:     false,
		Stdout:    true,
		Stderr:    true,
		TTY:       false,
	}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(c.Config, "POST", req.URL())
	if err != nil {
		return ExecResult{}, errors.Wrap(err, "creating spdy executor")
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	res := ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitOK: err == nil}
	if err != nil {
		// A command that ran and exited non-zero is reported through
		// ExitOK/Stderr, not as an exec failure.
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}
		return res, errors.Wrap(err, "exec stream failed")
	}
	return res, nil
}

// FindPrimaryPod locates the pod labeled cluster=<name>,role=primary in
// namespace with a single list call. Returns a retryable error carrying
// the instance name when no matching pod is in the Running phase.
func FindPrimaryPod(ctx context.Context, clientset kubernetes.Interface, namespace, clusterName string) (*corev1.Pod, error) {
	selector := metav1.ListOptions{
		LabelSelector: fmt.Sprintf("cluster=%s,role=primary", clusterName),
	}
	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, selector)
	if err != nil {
		return nil, errors.Wrap(err, "listing primary pod candidates")
	}
	for i := range pods.Items {
		pod := &pods.Items[i]
		if pod.Status.Phase == corev1.PodRunning {
			return pod, nil
		}
	}
	return nil, &ErrNoPrimaryPod{Instance: clusterName}
}

// ErrNoPrimaryPod is a retryable error: the instance name lets callers
// requeue without re-resolving context.
type ErrNoPrimaryPod struct{ Instance string }

func (e *ErrNoPrimaryPod) Error() string {
	return fmt.Sprintf("no ready primary pod found for instance %q", e.Instance)
}
