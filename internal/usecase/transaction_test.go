package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestTransactionCompensatesInReverse(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var trail []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, name)
			return err
		}
	}

	tx := NewTransaction(logger)
	tx.AddOperation("a", step("do a", nil), step("undo a", nil))
	tx.AddOperation("b", step("do b", nil), step("undo b", errors.New("gone")))
	tx.AddOperation("c", step("do c", errors.New("boom")), step("undo c", nil))

	err := tx.Execute(context.Background())

	assert.ErrorContains(t, err, "operation 'c' failed: boom")
	assert.Equal(t, []string{"do a", "do b", "do c", "undo b", "undo a"}, trail)
	if assert.Len(t, hook.Entries, 1) {
		assert.Equal(t, "b", hook.LastEntry().Data["compensation"])
	}
}

func TestTransactionSkipsMissingCompensation(t *testing.T) {
	tx := NewTransaction(nil)
	ran := false
	tx.AddOperation("a", func(context.Context) error { return nil }, nil)
	tx.AddOperation("b", func(context.Context) error { ran = true; return errors.New("x") }, nil)

	assert.Error(t, tx.Execute(context.Background()))
	assert.True(t, ran)
}
