package database

import (
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/tembo-io/pgdataplane-operator/internal/naming"
	"github.com/tembo-io/pgdataplane-operator/internal/requeue"
	dbv1beta1 "github.com/tembo-io/pgdataplane-operator/pkg/apis/databases.tembo.io/v1beta1"
)

func TestPaused(t *testing.T) {
	cases := []struct {
		name string
		ann  map[string]string
		want bool
	}{
		{"no annotation", nil, false},
		{"explicit false", map[string]string{naming.PauseAnnotation: "false"}, false},
		{"explicit true", map[string]string{naming.PauseAnnotation: "true"}, true},
		{"garbage value", map[string]string{naming.PauseAnnotation: "not-a-bool"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &dbv1beta1.Database{ObjectMeta: metav1.ObjectMeta{Annotations: tc.ann}}
			if got := paused(db); got != tc.want {
				t.Fatalf("paused() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPodNotReadySince_ReadyPod(t *testing.T) {
	pod := &corev1.Pod{
		Status: corev1.PodStatus{
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionTrue},
			},
		},
	}
	_, ready := podNotReadySince(pod)
	if !ready {
		t.Fatalf("expected pod to be reported ready")
	}
}

func TestPodNotReadySince_NotReadyUsesTransitionTime(t *testing.T) {
	transition := time.Now().Add(-5 * time.Minute)
	pod := &corev1.Pod{
		Status: corev1.PodStatus{
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionFalse, LastTransitionTime: metav1.NewTime(transition)},
			},
		},
	}
	since, ready := podNotReadySince(pod)
	if ready {
		t.Fatalf("expected pod to be reported not ready")
	}
	if !since.Equal(transition) {
		t.Fatalf("expected since=%v, got %v", transition, since)
	}
}

func TestPodNotReadySince_NoReadyConditionFallsBackToCreation(t *testing.T) {
	created := time.Now().Add(-10 * time.Minute)
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{CreationTimestamp: metav1.NewTime(created)},
	}
	since, ready := podNotReadySince(pod)
	if ready {
		t.Fatalf("expected pod to be reported not ready")
	}
	if !since.Equal(created) {
		t.Fatalf("expected since=%v, got %v", created, since)
	}
}

func TestToResult_Await(t *testing.T) {
	res := toResult(requeue.Await())
	if res.RequeueAfter != 0 {
		t.Fatalf("expected a zero-value result for an await action, got %v", res)
	}
}

func TestToResult_Requeue(t *testing.T) {
	res := toResult(requeue.After(requeue.Short))
	if res.RequeueAfter != requeue.Short {
		t.Fatalf("expected RequeueAfter=%v, got %v", requeue.Short, res.RequeueAfter)
	}
}
