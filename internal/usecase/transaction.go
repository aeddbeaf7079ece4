package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Transaction runs operations in order and, when one fails, runs the
// compensations registered for the operations that already succeeded in
// reverse order.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	logger        logrus.FieldLogger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(logger logrus.FieldLogger) *Transaction {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Transaction{logger: logger}
}

// AddOperation registers fn with an optional compensation; the i-th
// compensation undoes the i-th operation.
func (t *Transaction) AddOperation(name string, fn func(context.Context) error, compensate func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
	t.compensations = append(t.compensations, Compensation{name, compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		comp := t.compensations[i]
		if comp.Fn == nil {
			continue
		}
		if err := comp.Fn(context.WithoutCancel(ctx)); err != nil {
			t.logger.WithError(err).WithField("compensation", comp.Name).
				Error("compensation failed, data may be inconsistent")
		}
	}
}
