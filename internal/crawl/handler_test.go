package crawl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func noopHandler(_ context.Context, _ *Request) ([]*Task, error) {
	return nil, nil
}

func TestNewHandlerRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewHandler(`[unclosed`, 0, noopHandler)
	require.Error(t, err)

	_, err = NewHandler(`.*`, 0, nil)
	require.Error(t, err)
}

func TestHandlerMatchUsesSearchSemantics(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(`example\.com/gallery/`, 0, noopHandler)
	require.NoError(t, err)

	require.True(t, h.Match("https://example.com/gallery/42"), "pattern must match anywhere in the URL")
	require.False(t, h.Match("https://example.com/about"))
}

func TestHandlerGroups(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(`gallery/(?P<id>\d+)/page/(\d+)`, 0, noopHandler)
	require.NoError(t, err)

	groups := h.Groups("https://example.com/gallery/42/page/7")
	require.NotNil(t, groups)
	require.Equal(t, "gallery/42/page/7", groups["0"])
	require.Equal(t, "42", groups["1"])
	require.Equal(t, "7", groups["2"])
	require.Equal(t, "42", groups["id"])

	require.Nil(t, h.Groups("https://example.com/about"))
}

func TestHandlerTableSpecificBeforeGeneric(t *testing.T) {
	t.Parallel()

	table := NewHandlerTable()
	generic, err := NewHandler(`.*`, 0, noopHandler)
	require.NoError(t, err)
	specific, err := NewHandler(`example\.com/item/`, 10, noopHandler)
	require.NoError(t, err)

	// Generic registered first; the specific one must still win by priority.
	table.Register(generic)
	table.Register(specific)

	require.Same(t, specific, table.Select("https://example.com/item/1"))
	require.Same(t, generic, table.Select("https://other.org/"))
}

func TestHandlerTableTiesPreserveRegistrationOrder(t *testing.T) {
	t.Parallel()

	table := NewHandlerTable()
	first, err := NewHandler(`example\.com`, 5, noopHandler)
	require.NoError(t, err)
	second, err := NewHandler(`example`, 5, noopHandler)
	require.NoError(t, err)

	table.Register(first)
	table.Register(second)

	require.Same(t, first, table.Select("https://example.com/x"))
}

func TestHandlerTableNoMatch(t *testing.T) {
	t.Parallel()

	table := NewHandlerTable()
	h, err := NewHandler(`example\.com`, 0, noopHandler)
	require.NoError(t, err)
	table.Register(h)

	require.Nil(t, table.Select("https://other.org/"))
}

func TestHandlerInvokeRecoversPanic(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(`.*`, 0, func(_ context.Context, _ *Request) ([]*Task, error) {
		panic("boom")
	})
	require.NoError(t, err)

	_, invokeErr := h.invoke(context.Background(), &Request{URL: "http://e.com/"})
	require.Error(t, invokeErr)
	require.Contains(t, invokeErr.Error(), "handler panic")
}

func TestHandlerInlineFlags(t *testing.T) {
	t.Parallel()

	h, err := NewHandler(`(?i)example\.com/IMG`, 0, noopHandler)
	require.NoError(t, err)
	require.True(t, h.Match("https://EXAMPLE.com/img/1.jpg"))
}
