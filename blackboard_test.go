package mdflow

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mdflow/internal/action"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func streamResponse(chunks ...string) *fakeProvider {
	return &fakeProvider{chunks: chunks}
}

func TestProcessBlackboard_HeaderFirst(t *testing.T) {
	f := New("Teach fractions.", WithProvider(streamResponse(
		`{"action":"create_container","container_id":"c1","zone_id":"main","narration":"Let's start"}`,
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)
	defer stream.Close()

	first, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Step.IsHeader())
	assert.Equal(t, 0, first.Seq)
	assert.Contains(t, first.Step.ContainerID, stream.Session())

	second, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, action.ActionCreateContainer, second.Step.Action)
	assert.Equal(t, 1, second.Seq)

	_, err = stream.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestProcessBlackboard_RecordsAcrossChunks(t *testing.T) {
	// Object boundaries never align with chunk boundaries.
	f := New("Content.", WithProvider(streamResponse(
		`{"action":"append_to_con`,
		`tainer","container_id":"c1","html":"<p>a</p>"}{"action":"append_to_containe`,
		`r","container_id":"c1","html":"<p>b</p>"}`,
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()
	_, err = stream.Next(ctx) // header
	require.NoError(t, err)

	var htmls []string
	for {
		res, err := stream.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		htmls = append(htmls, res.Step.HTML)
	}
	assert.Equal(t, []string{"<p>a</p>", "<p>b</p>"}, htmls)
}

func TestProcessBlackboard_ProseBetweenRecordsIgnored(t *testing.T) {
	f := New("Content.", WithProvider(streamResponse(
		"Sure, here are the steps:\n",
		`{"action":"clear_canvas"} and then `,
		`{"action":"activate_zone","zone_id":"main","narration":"Look here"}`,
		"\nAll done!",
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()
	_, err = stream.Next(ctx) // header
	require.NoError(t, err)

	var actions []string
	for {
		res, err := stream.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		actions = append(actions, res.Step.Action)
	}
	assert.Equal(t, []string{action.ActionClearCanvas, action.ActionActivateZone}, actions)
}

func TestProcessBlackboard_TruncatedStream(t *testing.T) {
	f := New("Content.", WithProvider(streamResponse(
		`{"action":"clear_canvas"}{"action":"append_to_con`,
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()
	_, err = stream.Next(ctx) // header
	require.NoError(t, err)
	_, err = stream.Next(ctx) // clear_canvas
	require.NoError(t, err)

	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, ErrTruncatedStream)

	// The error is sticky.
	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, ErrTruncatedStream)
}

func TestProcessBlackboard_DecodeErrorFatal(t *testing.T) {
	f := New("Content.", WithProvider(streamResponse(
		`{"action":}`,
		`{"action":"clear_canvas"}`,
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()
	_, err = stream.Next(ctx) // header
	require.NoError(t, err)

	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, ErrDecode)

	// Decode failure ends the session; the later valid record is
	// never delivered.
	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestProcessBlackboard_SchemaErrorNotFatal(t *testing.T) {
	f := New("Content.", WithProvider(streamResponse(
		`{"action":"append_to_container","html":"<p/>"}`,
		`{"action":"clear_canvas"}`,
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)
	defer stream.Close()

	ctx := context.Background()
	_, err = stream.Next(ctx) // header
	require.NoError(t, err)

	res, err := stream.Next(ctx)
	assert.ErrorIs(t, err, ErrMissingField)
	require.NotNil(t, res)
	assert.Equal(t, action.ActionAppendToContainer, res.Step.Action)

	res, err = stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, action.ActionClearCanvas, res.Step.Action)

	_, err = stream.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestProcessBlackboard_NonContentBlockRejected(t *testing.T) {
	f := New("?[%{{x}} A|B]", WithProvider(streamResponse()))

	_, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.Error(t, err)
}

func TestProcessBlackboard_CloseWithoutDrain(t *testing.T) {
	f := New("Content.", WithProvider(streamResponse(
		`{"action":"clear_canvas"}`,
		`{"action":"clear_canvas"}`,
	)))

	stream, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	require.NoError(t, err)

	_, err = stream.Next(context.Background())
	require.NoError(t, err)
	require.NoError(t, stream.Close())
}

func TestProcessBlackboard_NoProvider(t *testing.T) {
	f := New("Content.")

	_, err := f.ProcessBlackboard(context.Background(), 0, ProcessOptions{})
	assert.ErrorIs(t, err, ErrNoProvider)
}
