package xlread

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlread-go/pkg/xlread/models"
	"github.com/ukaji3/xlread-go/pkg/xlread/parser"
)

type panicParser struct{}

func (panicParser) Parse([]byte) (*parser.Workbook, error) {
	panic("container exploded")
}

// gateParser blocks until release is closed.
type gateParser struct {
	release chan struct{}
}

func (p gateParser) Parse([]byte) (*parser.Workbook, error) {
	<-p.release
	return &parser.Workbook{}, nil
}

func TestSubmit_Success(t *testing.T) {
	c := Submit(summaryWorkbook(t), DefaultOptions())
	require.NotEmpty(t, c.ID())

	result, err := c.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Empty"}, result.SheetNames)
	assert.Equal(t, models.SheetTable{{"Name": "Alice", "Score": 90.0}}, result.Sheets["Summary"])
	assert.Equal(t, models.SheetTable{}, result.Sheets["Empty"])

	select {
	case <-c.Done():
	default:
		t.Fatal("Done should be closed after Wait returns")
	}
}

func TestSubmit_DecodeFailure(t *testing.T) {
	result, err := Submit("not base64 at all!", DefaultOptions()).Wait()
	assert.Nil(t, result)
	require.Error(t, err)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Message, "decode failed")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSubmit_ParseFailure(t *testing.T) {
	// Valid base64 of a zip local header that ends abruptly.
	result, err := Submit("UEsDBBQAAAAIAA==", DefaultOptions()).Wait()
	assert.Nil(t, result)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Message, "parse failed")
}

func TestSubmit_RecoversPanics(t *testing.T) {
	result, err := Submit("AAAA", Options{Parser: panicParser{}}).Wait()
	assert.Nil(t, result)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Message, "container exploded")
}

func TestCompletion_SettlesOnce(t *testing.T) {
	c := newCompletion()
	first := &models.Result{SheetNames: []string{"A"}}

	assert.True(t, c.settle(first, nil))
	assert.False(t, c.settle(nil, errors.New("late failure")))
	assert.False(t, c.settle(&models.Result{}, nil))

	result, err := c.Wait()
	require.NoError(t, err)
	assert.Same(t, first, result)
}

func TestCompletion_FailureThenSuccessIsIgnored(t *testing.T) {
	c := newCompletion()

	assert.True(t, c.settle(nil, errors.New("parse failed: bad")))
	assert.False(t, c.settle(&models.Result{}, nil))

	result, err := c.Wait()
	assert.Nil(t, result)
	assert.EqualError(t, err, "parse failed: bad")
}

func TestCompletion_ConcurrentSettle(t *testing.T) {
	c := newCompletion()

	var wg sync.WaitGroup
	wins := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- c.settle(&models.Result{}, nil)
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for won := range wins {
		if won {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCompletion_NilResultWithoutErrorIsFailure(t *testing.T) {
	c := newCompletion()
	c.settle(nil, nil)

	result, err := c.Wait()
	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestCompletion_WaitContext(t *testing.T) {
	release := make(chan struct{})
	c := Submit("AAAA", Options{Parser: gateParser{release: release}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.WaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var f *Failure
	assert.False(t, errors.As(err, &f), "an abandoned wait is not a Failure")

	close(release)
	result, err := c.WaitContext(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.SheetNames)
}

func TestSubmit_ConcurrentInvocationsAreIndependent(t *testing.T) {
	reader := NewReader(DefaultOptions())
	good := summaryWorkbook(t)

	completions := make([]*Completion, 20)
	for i := range completions {
		if i%2 == 0 {
			completions[i] = reader.Submit(good)
		} else {
			completions[i] = reader.Submit("%%%")
		}
	}

	for i, c := range completions {
		result, err := c.Wait()
		if i%2 == 0 {
			require.NoError(t, err)
			assert.Equal(t, []string{"Summary", "Empty"}, result.SheetNames)
		} else {
			assert.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, result)
		}
	}
}
