package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	testData := map[string]struct {
		err      error
		expected string
	}{
		"nil":        {nil, ""},
		"validation": {Validationf("negative %s", "count"), "validation"},
		"shape":      {Shapef("got %d rows", 3), "shape"},
		"inference":  {Inference(errors.New("boom")), "inference"},
		"store":      {Store("tail", errors.New("disk")), "store"},
		"wrapped":    {fmt.Errorf("predict: %w", Store("append", errors.New("x"))), "store"},
		"other":      {errors.New("plain"), "internal"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Kind(td.err))
		})
	}
}

func TestInferenceKeepsShape(t *testing.T) {
	err := Inference(Shapef("bad output"))
	assert.ErrorIs(t, err, ErrShape)
	assert.NotErrorIs(t, err, ErrInference)
}

func TestStoreDoesNotDoubleWrap(t *testing.T) {
	inner := Store("load", errors.New("eof"))
	assert.Same(t, inner, Store("tail", inner))
	assert.Nil(t, Store("noop", nil))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Jumlah ternak tidak boleh negatif", Message(Validationf("Jumlah ternak tidak boleh negatif")))
	assert.Equal(t, "append: disk full", Message(Store("append", errors.New("disk full"))))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "", Message(nil))
}
