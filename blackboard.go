package mdflow

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mdflow/internal/action"
	"mdflow/internal/jsonstream"
	"mdflow/internal/logging"
	"mdflow/internal/parser"
	"mdflow/internal/prompt"
)

// blackboardHeaderHTML is the shell the synthetic header step carries;
// the client mounts it before any model-produced step arrives.
const blackboardHeaderHTML = `<div class="blackboard-root"></div>`

// StepResult is one record pulled from a StepStream.
type StepResult struct {
	// Raw is the extracted object text before sanitization. Empty for
	// the synthetic header.
	Raw string

	// Step is the decoded, validated record.
	Step *Step

	// Seq numbers steps within the session, header first at 0.
	Seq int
}

// StepStream is a pull cursor over the structured records of one
// streaming response. A producer goroutine drains the provider stream
// into a channel; Next extracts, decodes, and validates one record per
// call. The first record is always a synthetic header step.
//
// Next returns io.EOF after the last record. A record that is not
// valid JSON after sanitization ends the session with ErrDecode; a
// stream that ends with a never-closed object ends it with
// ErrTruncatedStream. A schema violation is reported for that record
// only and the session continues.
//
// A StepStream is not safe for concurrent use.
type StepStream struct {
	session string
	cancel  context.CancelFunc
	chunks  chan string
	group   *errgroup.Group
	log     *zap.Logger

	extractor  jsonstream.Extractor
	seq        int
	headerSent bool
	fatal      error
}

// ProcessBlackboard runs a content block in streaming record mode: the
// block content is sent with the blackboard instruction and the
// response is decoded record by record. The caller must drain or Close
// the returned stream.
func (f *Flow) ProcessBlackboard(ctx context.Context, index int, opts ProcessOptions) (*StepStream, error) {
	block, err := f.Block(index)
	if err != nil {
		return nil, err
	}
	if block.Type != BlockContent {
		return nil, fmt.Errorf("block %d is %s, streaming record mode needs a content block", index, block.Type)
	}

	content := parser.SubstituteVariables(block.Content, opts.Vars)
	messages := prompt.BlackboardMessages(f.documentInstruction(opts.Vars), f.cfg.Prompts.Blackboard, content)
	messages = withContext(messages, opts.Context)

	streamCtx, cancel := context.WithCancel(ctx)
	upstream, err := f.provider.Stream(streamCtx, messages, f.callOptions())
	if err != nil {
		cancel()
		return nil, err
	}

	s := &StepStream{
		session: uuid.NewString(),
		cancel:  cancel,
		chunks:  make(chan string, 16),
		log:     logging.For(logging.CategoryStream),
	}
	s.group, streamCtx = errgroup.WithContext(streamCtx)
	s.group.Go(func() error {
		defer close(s.chunks)
		for {
			chunk, err := upstream.Next(streamCtx)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case s.chunks <- chunk:
			case <-streamCtx.Done():
				return streamCtx.Err()
			}
		}
	})

	s.log.Debug("blackboard session started",
		zap.String("session", s.session),
		zap.Int("block", index))
	return s, nil
}

// Next returns the next record. See the type doc for the error
// contract.
func (s *StepStream) Next(ctx context.Context) (*StepResult, error) {
	if s.fatal != nil {
		return nil, s.fatal
	}

	if !s.headerSent {
		s.headerSent = true
		s.seq++
		return &StepResult{
			Step: &action.Step{
				Action:      action.ActionHead,
				Type:        "head",
				ContainerID: "blackboard-" + s.session,
				HTML:        blackboardHeaderHTML,
			},
			Seq: 0,
		}, nil
	}

	for {
		if raw, ok := s.extractor.ExtractNext(); ok {
			return s.emit(raw)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-s.chunks:
			if !ok {
				return nil, s.finish()
			}
			s.extractor.Append(chunk)
		}
	}
}

// emit decodes and validates one extracted object. Decode failure is
// session-fatal; skipping a unit could silently desynchronize the
// client canvas.
func (s *StepStream) emit(raw string) (*StepResult, error) {
	step, err := action.Decode(raw)
	if err != nil {
		s.fail(err)
		s.log.Warn("record decode failed",
			zap.String("session", s.session),
			zap.Int("seq", s.seq),
			zap.Error(err))
		return nil, err
	}

	seq := s.seq
	s.seq++

	if err := action.Validate(step); err != nil {
		s.log.Warn("record rejected",
			zap.String("session", s.session),
			zap.Int("seq", seq),
			zap.String("action", step.Action),
			zap.Error(err))
		return &StepResult{Raw: raw, Step: step, Seq: seq}, err
	}

	s.log.Debug("record emitted",
		zap.String("session", s.session),
		zap.Int("seq", seq),
		zap.String("action", step.Action))
	return &StepResult{Raw: raw, Step: step, Seq: seq}, nil
}

// finish resolves the end-of-stream outcome once the producer is done.
func (s *StepStream) finish() error {
	if err := s.group.Wait(); err != nil && err != context.Canceled {
		s.fail(err)
		return err
	}
	if s.extractor.HasTrailing() {
		s.log.Warn("stream ended mid-record",
			zap.String("session", s.session),
			zap.String("trailing", s.extractor.Buffer()))
		s.fail(ErrTruncatedStream)
		return ErrTruncatedStream
	}
	s.fail(io.EOF)
	return io.EOF
}

func (s *StepStream) fail(err error) {
	s.fatal = err
	s.cancel()
}

// Session returns the stream's session id.
func (s *StepStream) Session() string { return s.session }

// Close cancels the producer and releases the session. Safe to call
// after Next returned an error.
func (s *StepStream) Close() error {
	s.cancel()
	for range s.chunks {
	}
	if err := s.group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
