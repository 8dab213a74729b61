package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(ErrNotFound, "Product not found"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", New(ErrOutOfStock, "Insufficient stock")), http.StatusBadRequest},
		{New(ErrEmptyCart, "Cart is empty"), http.StatusBadRequest},
		{New(ErrConflict, "exists"), http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v)=%d want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := New(ErrNotFound, "Cart item not found")
	if err.Error() != "Cart item not found" {
		t.Fatalf("msg=%q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected kind to unwrap")
	}
	if Public(errors.New("db down")) {
		t.Fatal("internal errors must not be public")
	}
}
