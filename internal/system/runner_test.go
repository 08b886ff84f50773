package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSudoPrompts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drops sudo prompt",
			in:   "[sudo] password for alice: \npacman: target not found\n",
			want: "pacman: target not found",
		},
		{
			name: "drops bare password line",
			in:   "Password: \nerror: something broke",
			want: "error: something broke",
		},
		{
			name: "keeps plain diagnostics",
			in:   "error: exit status 1",
			want: "error: exit status 1",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, filterSudoPrompts(tc.in))
		})
	}
}

func TestShellJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"plain", []string{"pacman", "-Syu"}, "pacman -Syu"},
		{"spaces", []string{"echo", "hello world"}, "echo 'hello world'"},
		{"single quote", []string{"echo", "it's"}, `echo 'it'\''s'`},
		{"shell metachars", []string{"sh", "-c", "a|b"}, "sh -c 'a|b'"},
		{"empty arg", []string{"cmd", ""}, "cmd ''"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, shellJoin(tc.argv))
		})
	}
}

func TestRemoveInitialSessionBlock(t *testing.T) {
	t.Parallel()

	in := `[terminal]
vt = 1

[initial_session]
command = "vimgreet onboard"
user = "greeter"

[default_session]
command = "vimgreet"
user = "greeter"
`
	out := removeInitialSessionBlock(in)
	assert.NotContains(t, out, "[initial_session]")
	assert.NotContains(t, out, "vimgreet onboard")
	assert.Contains(t, out, "[terminal]")
	assert.Contains(t, out, "[default_session]")
	assert.Contains(t, out, `command = "vimgreet"`)
}

func TestRemoveInitialSessionBlockAtEnd(t *testing.T) {
	t.Parallel()

	in := "[default_session]\ncommand = \"vimgreet\"\n\n[initial_session]\ncommand = \"vimgreet onboard\"\n"
	out := removeInitialSessionBlock(in)
	assert.NotContains(t, out, "initial_session")
	assert.Contains(t, out, "[default_session]")
}

func TestDryRunner(t *testing.T) {
	t.Parallel()

	var r Runner = DryRunner{}

	assert.True(t, r.CheckNetwork())
	assert.NotEmpty(t, r.ListLocales())
	assert.NotEmpty(t, r.ListKeymaps())
	assert.NotEmpty(t, r.ListTimezones())

	require.NoError(t, r.CreateUser("alice", "hunter22", []string{"wheel"}, "/bin/bash"))
	require.NoError(t, r.SetLocale("en_US.UTF-8"))
	require.NoError(t, r.SetKeymap("us"))
	require.NoError(t, r.SetTimezone("UTC"))
	require.NoError(t, r.RemoveInitialSession())

	out, err := r.RunAsUser("alice", []string{"true"})
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = r.RunAsUserSudo("alice", []string{"pacman", "-Syu"}, "hunter22")
	require.NoError(t, err)
	assert.Empty(t, out)
}
