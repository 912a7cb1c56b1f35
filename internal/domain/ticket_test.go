package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want TicketStatus
	}{
		{"aberto", StatusOpen},
		{"Aberto", StatusOpen},
		{"em andamento", StatusInProgress},
		{"em atendimento", StatusInProgress},
		{"em_atendimento", StatusInProgress},
		{"aguardando", StatusWaiting},
		{"em análise", StatusReview},
		{"em analise", StatusReview},
		{"concluído", StatusResolved},
		{"concluido", StatusResolved},
		{"Expirado", StatusCancelled},
		{"cancelado", StatusCancelled},
		{"  aberto  ", StatusOpen},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw))
		})
	}
}

func TestNormalizeStatusUnknownFallsBackToSlug(t *testing.T) {
	assert.Equal(t, TicketStatus("em_transito"), NormalizeStatus("Em Trânsito"))
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority("Alta"))
	assert.Equal(t, PriorityCritical, NormalizePriority("Crítica"))
	assert.Equal(t, PriorityCritical, NormalizePriority("critica"))
	assert.Equal(t, PriorityNormal, NormalizePriority(""))
	assert.Equal(t, PriorityLow, NormalizePriority(" BAIXA "))
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, StatusOpen.IsActive())
	assert.True(t, StatusInProgress.IsActive())
	assert.True(t, StatusWaiting.IsPausing())
	assert.True(t, StatusReview.IsPausing())
	assert.True(t, StatusResolved.IsFinal())
	assert.True(t, StatusCancelled.IsFinal())

	assert.False(t, StatusWaiting.IsActive())
	assert.False(t, StatusResolved.IsActive())
	assert.False(t, StatusOpen.IsPausing())
	assert.False(t, StatusOpen.IsFinal())
}

func TestIsValidTransition(t *testing.T) {
	assert.True(t, IsValidTransition(StatusOpen, StatusInProgress))
	assert.True(t, IsValidTransition(StatusInProgress, StatusWaiting))
	assert.True(t, IsValidTransition(StatusWaiting, StatusResolved))
	assert.True(t, IsValidTransition(StatusResolved, StatusInProgress))

	assert.False(t, IsValidTransition(StatusOpen, StatusResolved))
	assert.False(t, IsValidTransition(StatusCancelled, StatusOpen))
	assert.False(t, IsValidTransition(StatusResolved, StatusCancelled))
}
