package vault_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fahmaliyi/acctvault/logger"
	"github.com/fahmaliyi/acctvault/vault"
	"github.com/fahmaliyi/acctvault/vault/mock"
)

var errDisk = errors.New("disk full")

func openSession(t *testing.T, text string) (*vault.Session, *mock.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	storage := mock.NewMockStorage(ctrl)
	storage.EXPECT().Read(gomock.Any()).Return(text, nil)

	s := vault.NewSession(storage, nil)
	require.NoError(t, s.Open(context.Background()))
	return s, storage
}

func TestSession_Open(t *testing.T) {
	s, _ := openSession(t, "github,aa:bb:cc\nmail,")
	assert.Equal(t, []string{"github", "mail"}, s.Vault().Names())
}

func TestSession_OpenFailureIsNotEmpty(t *testing.T) {
	s, storage := openSession(t, "github,aa:bb:cc")

	storage.EXPECT().Read(gomock.Any()).Return("", errDisk)
	err := s.Reload(context.Background())

	require.ErrorIs(t, err, vault.ErrUnavailable)
	require.ErrorIs(t, err, errDisk)
	assert.Equal(t, []string{"github"}, s.Vault().Names(), "previous state must survive a failed read")
}

func TestSession_CreateWritesThenCommits(t *testing.T) {
	s, storage := openSession(t, "github,aa:bb:cc")

	storage.EXPECT().Write(gomock.Any(), "github,aa:bb:cc\nmail,").Return(nil)

	require.NoError(t, s.Create(context.Background(), "mail", "", ""))
	assert.Equal(t, []string{"github", "mail"}, s.Vault().Names())
}

func TestSession_FailedWriteKeepsState(t *testing.T) {
	ctx := context.Background()
	s, storage := openSession(t, "github,aa:bb:cc\nmail,")
	before := s.Vault().Records()

	storage.EXPECT().Write(gomock.Any(), gomock.Any()).Return(errDisk).Times(4)

	require.ErrorIs(t, s.Create(ctx, "bank", "", ""), errDisk)
	require.ErrorIs(t, s.Update(ctx, "mail", "email", "", ""), errDisk)
	require.ErrorIs(t, s.Remove(ctx, "github"), errDisk)
	require.ErrorIs(t, s.Reorder(ctx, 0, 1), errDisk)

	assert.Equal(t, before, s.Vault().Records())
}

func TestSession_RejectedMutationDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s, _ := openSession(t, "github,aa:bb:cc")

	// No Write expectation: gomock fails the test if one happens.
	require.ErrorIs(t, s.Create(ctx, "github", "", ""), vault.ErrValidation)
	require.ErrorIs(t, s.Reorder(ctx, 0, 5), vault.ErrOutOfRange)
	require.ErrorIs(t, s.Update(ctx, "nope", "x", "", ""), vault.ErrNotFound)
}

func TestSession_MutationsSerializeWholeVault(t *testing.T) {
	ctx := context.Background()
	s, storage := openSession(t, "a,\nb,\nc,")

	gomock.InOrder(
		storage.EXPECT().Write(gomock.Any(), "c,\na,\nb,").Return(nil),
		storage.EXPECT().Write(gomock.Any(), "c,\nb,").Return(nil),
		storage.EXPECT().Write(gomock.Any(), "c,\nB,").Return(nil),
	)

	require.NoError(t, s.Reorder(ctx, 2, 0))
	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Update(ctx, "b", "B", "", ""))
	assert.Equal(t, []string{"c", "B"}, s.Vault().Names())
}

func TestSession_RevealAfterCreate(t *testing.T) {
	ctx := context.Background()
	s, storage := openSession(t, "")

	var written string
	storage.EXPECT().Write(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, text string) error {
		written = text
		return nil
	})

	require.NoError(t, s.Create(ctx, "github", "hunter2", "pw"))
	assert.NotContains(t, written, "hunter2")

	got, err := s.Reveal("github", "pw")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	_, err = s.Reveal("github", "nope")
	assert.True(t, vault.IsDecryptFailure(err))
}

func TestSession_SetStorage(t *testing.T) {
	s, _ := openSession(t, "old,")

	ctrl := gomock.NewController(t)
	next := mock.NewMockStorage(ctrl)
	next.EXPECT().Read(gomock.Any()).Return("new,", nil)

	s.SetStorage(next)
	require.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, []string{"new"}, s.Vault().Names())
}

func TestSession_OpenRenamesDuplicatesAndWarns(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mock.NewMockStorage(ctrl)
	storage.EXPECT().Read(gomock.Any()).Return("github,aa:bb:cc\ngithub,dd:ee:ff", nil)

	var buf bytes.Buffer
	s := vault.NewSession(storage, logger.NewLogger("test", &buf, zerolog.DebugLevel))
	require.NoError(t, s.Open(context.Background()))

	assert.Equal(t, []string{"github", "github (2)"}, s.Vault().Names())
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "duplicate account name renamed on load")
}
