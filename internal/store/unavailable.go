package store

import "context"

type unavailable struct{}

// Unavailable returns a System for environments without a local store.
// Every operation fails with ErrUnavailable.
func Unavailable() System {
	return unavailable{}
}

func (unavailable) Available() bool { return false }

func (unavailable) Open(context.Context) error { return ErrUnavailable }

func (unavailable) GetAll(context.Context) ([]Record, error) { return nil, ErrUnavailable }

func (unavailable) Get(context.Context, int64) (*Record, error) { return nil, ErrUnavailable }

func (unavailable) Add(context.Context, NewRecord) (int64, error) { return 0, ErrUnavailable }

func (unavailable) Update(context.Context, int64, Patch) (*Record, error) {
	return nil, ErrUnavailable
}

func (unavailable) Delete(context.Context, int64) error { return ErrUnavailable }
