package vim

import "strings"

// Buffer is a cursor-addressable rune buffer. A masked buffer never reveals
// its content through Display and overwrites its backing storage with zeros
// whenever content is cleared or replaced, so secrets do not linger in memory.
type Buffer struct {
	content []rune
	cursor  int
	masked  bool
}

// NewBuffer returns an empty unmasked buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewMasked returns an empty masked buffer for secrets.
func NewMasked() *Buffer {
	return &Buffer{masked: true}
}

// Content returns the buffer content as a string. Callers handing the value
// to background work must copy it out here and then Wipe the buffer; the
// buffer itself is never shared across goroutines.
func (b *Buffer) Content() string {
	return string(b.content)
}

// Cursor returns the cursor position in runes, always within [0, Len()].
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Len returns the content length in runes.
func (b *Buffer) Len() int {
	return len(b.content)
}

// IsEmpty reports whether the buffer holds no content.
func (b *Buffer) IsEmpty() bool {
	return len(b.content) == 0
}

// Masked reports whether the buffer hides its content.
func (b *Buffer) Masked() bool {
	return b.masked
}

// Display returns the content for rendering: the real text for unmasked
// buffers, or mask repeated once per rune for masked ones.
func (b *Buffer) Display(mask rune) string {
	if b.masked {
		return strings.Repeat(string(mask), len(b.content))
	}
	return string(b.content)
}

// Insert places r at the cursor and advances it.
func (b *Buffer) Insert(r rune) {
	b.content = append(b.content, 0)
	copy(b.content[b.cursor+1:], b.content[b.cursor:])
	b.content[b.cursor] = r
	b.cursor++
}

// DeleteBack removes the rune before the cursor. Returns false at the start.
func (b *Buffer) DeleteBack() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor--
	return b.deleteAt(b.cursor)
}

// DeleteForward removes the rune under the cursor. Returns false at the end.
func (b *Buffer) DeleteForward() bool {
	if b.cursor >= len(b.content) {
		return false
	}
	return b.deleteAt(b.cursor)
}

func (b *Buffer) deleteAt(i int) bool {
	copy(b.content[i:], b.content[i+1:])
	// Zero the vacated tail slot so removed runes leave no residue.
	b.content[len(b.content)-1] = 0
	b.content = b.content[:len(b.content)-1]
	return true
}

// DeleteWordBack removes the run of non-space runes (and one trailing space
// run) before the cursor, like readline's ctrl+w.
func (b *Buffer) DeleteWordBack() {
	for b.cursor > 0 && b.content[b.cursor-1] == ' ' {
		b.DeleteBack()
	}
	for b.cursor > 0 && b.content[b.cursor-1] != ' ' {
		b.DeleteBack()
	}
}

// MoveLeft moves the cursor one rune left, stopping at 0.
func (b *Buffer) MoveLeft() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveRight moves the cursor one rune right, stopping at the end.
func (b *Buffer) MoveRight() {
	if b.cursor < len(b.content) {
		b.cursor++
	}
}

// MoveStart moves the cursor to the beginning.
func (b *Buffer) MoveStart() {
	b.cursor = 0
}

// MoveEnd moves the cursor past the last rune.
func (b *Buffer) MoveEnd() {
	b.cursor = len(b.content)
}

// Clear zeroes the backing storage and empties the buffer.
func (b *Buffer) Clear() {
	b.wipe()
	b.content = b.content[:0]
	b.cursor = 0
}

// Set zeroes the previous content and replaces it, placing the cursor at the
// end.
func (b *Buffer) Set(value string) {
	b.wipe()
	b.content = append(b.content[:0], []rune(value)...)
	b.cursor = len(b.content)
}

// Wipe is the explicit end-of-life step for secret buffers: Go has no
// deterministic destructors, so owners call it at every point where the
// secret is no longer needed.
func (b *Buffer) Wipe() {
	b.Clear()
}

func (b *Buffer) wipe() {
	for i := range b.content {
		b.content[i] = 0
	}
	// Also zero the slack between len and cap left by earlier deletes.
	spare := b.content[len(b.content):cap(b.content)]
	for i := range spare {
		spare[i] = 0
	}
}
