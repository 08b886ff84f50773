package vim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_CursorInvariant(t *testing.T) {
	t.Parallel()

	// Every operation must leave the cursor within [0, Len()].
	ops := []func(b *Buffer){
		func(b *Buffer) { b.Insert('a') },
		func(b *Buffer) { b.Insert('é') },
		func(b *Buffer) { b.MoveLeft() },
		func(b *Buffer) { b.DeleteForward() },
		func(b *Buffer) { b.MoveStart() },
		func(b *Buffer) { b.DeleteBack() },
		func(b *Buffer) { b.Insert('x') },
		func(b *Buffer) { b.MoveEnd() },
		func(b *Buffer) { b.DeleteBack() },
		func(b *Buffer) { b.MoveRight() },
		func(b *Buffer) { b.Clear() },
		func(b *Buffer) { b.DeleteBack() },
		func(b *Buffer) { b.DeleteForward() },
		func(b *Buffer) { b.Set("héllo") },
		func(b *Buffer) { b.MoveLeft() },
		func(b *Buffer) { b.DeleteWordBack() },
	}

	b := NewBuffer()
	for i, op := range ops {
		op(b)
		require.GreaterOrEqual(t, b.Cursor(), 0, "op %d violated lower bound", i)
		require.LessOrEqual(t, b.Cursor(), b.Len(), "op %d violated upper bound", i)
	}
}

func TestBuffer_InsertDelete(t *testing.T) {
	t.Parallel()

	b := NewBuffer()
	for _, r := range "abc" {
		b.Insert(r)
	}
	assert.Equal(t, "abc", b.Content())
	assert.Equal(t, 3, b.Cursor())

	b.MoveLeft()
	b.Insert('x')
	assert.Equal(t, "abxc", b.Content())

	b.MoveStart()
	assert.False(t, b.DeleteBack())
	assert.True(t, b.DeleteForward())
	assert.Equal(t, "bxc", b.Content())

	b.MoveEnd()
	assert.False(t, b.DeleteForward())
	assert.True(t, b.DeleteBack())
	assert.Equal(t, "bx", b.Content())
}

func TestBuffer_UnicodeCursor(t *testing.T) {
	t.Parallel()

	b := NewBuffer()
	b.Set("日本語")
	assert.Equal(t, 3, b.Len())
	b.MoveLeft()
	b.DeleteBack()
	assert.Equal(t, "日語", b.Content())
}

func TestBuffer_DeleteWordBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single word", in: "hello", want: ""},
		{name: "two words", in: "hello world", want: "hello "},
		{name: "trailing space", in: "hello ", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuffer()
			b.Set(tt.in)
			b.DeleteWordBack()
			assert.Equal(t, tt.want, b.Content())
		})
	}
}

func TestBuffer_MaskedDisplay(t *testing.T) {
	t.Parallel()

	b := NewMasked()
	b.Set("hunter2")
	assert.Equal(t, "*******", b.Display('*'))
	assert.NotContains(t, b.Display('*'), "hunter")

	plain := NewBuffer()
	plain.Set("hunter2")
	assert.Equal(t, "hunter2", plain.Display('*'))
}

func TestBuffer_ClearZeroesBackingStorage(t *testing.T) {
	t.Parallel()

	b := NewMasked()
	b.Set("hunter2")
	raw := b.content[:cap(b.content)]
	b.Clear()

	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Cursor())
	for i, r := range raw {
		assert.Equalf(t, rune(0), r, "storage slot %d retained data after Clear", i)
	}
}

func TestBuffer_SetZeroesPreviousContent(t *testing.T) {
	t.Parallel()

	b := NewMasked()
	b.Set("longpassword")
	raw := b.content[:cap(b.content)]
	b.Set("ab")

	for i, r := range raw[2:] {
		assert.Equalf(t, rune(0), r, "storage slot %d retained data after Set", i+2)
	}
	assert.Equal(t, "ab", b.Content())
}

func TestBuffer_WipeAfterDeleteLeavesNoResidue(t *testing.T) {
	t.Parallel()

	b := NewMasked()
	b.Set("secret")
	b.DeleteBack()
	b.DeleteBack()
	raw := b.content[:cap(b.content)]
	b.Wipe()

	for i, r := range raw {
		assert.Equalf(t, rune(0), r, "storage slot %d retained data after Wipe", i)
	}
}
