package match

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/neplaunch/pkg/apperror"
)

func TestNew_RejectsSelfMatch(t *testing.T) {
	id := uuid.New()
	_, err := New(id, id, nil, nil, nil, time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrSelfMatch))
}

func TestNew_StartsPending(t *testing.T) {
	m, err := New(uuid.New(), uuid.New(), nil, nil, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, 1, m.Version)
	assert.Nil(t, m.RespondedAt)
	assert.Equal(t, uuid.Nil, m.Key().JobID)
}

func TestRespond_TargetAccepts(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	m, _ := New(requester, target, nil, nil, nil, time.Now())

	now := time.Now()
	require.NoError(t, m.Respond(target, true, now))

	assert.Equal(t, StatusAccepted, m.Status)
	assert.Equal(t, 2, m.Version)
	require.NotNil(t, m.RespondedAt)
	assert.Equal(t, now, *m.RespondedAt)
}

func TestRespond_OnlyTarget(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	m, _ := New(requester, target, nil, nil, nil, time.Now())

	err := m.Respond(requester, true, time.Now())
	assert.True(t, errors.Is(err, apperror.ErrNotAuthorized))

	err = m.Respond(uuid.New(), false, time.Now())
	assert.True(t, errors.Is(err, apperror.ErrNotAuthorized))
	assert.Equal(t, StatusPending, m.Status)
}

func TestRespond_TerminalIsFinal(t *testing.T) {
	requester, target := uuid.New(), uuid.New()
	m, _ := New(requester, target, nil, nil, nil, time.Now())
	require.NoError(t, m.Respond(target, true, time.Now()))

	err := m.Respond(target, false, time.Now())
	assert.True(t, errors.Is(err, apperror.ErrAlreadyFinalized))
	assert.Equal(t, StatusAccepted, m.Status)

	err = m.Respond(target, true, time.Now())
	assert.True(t, errors.Is(err, apperror.ErrAlreadyFinalized), "re-accepting is not a silent no-op")
}

func TestKey_IncludesJob(t *testing.T) {
	requester, target, job := uuid.New(), uuid.New(), uuid.New()
	withJob, _ := New(requester, target, &job, nil, nil, time.Now())
	withoutJob, _ := New(requester, target, nil, nil, nil, time.Now())

	assert.NotEqual(t, withJob.Key(), withoutJob.Key())
}
