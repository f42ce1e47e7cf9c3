package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageinfo/process"
	"pageinfo/process_dump"
)

func TestResolveExecutable(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.SetExecutable("/usr/local/bin/myprog", 1000, 99, 0)

	d, err := ResolveExecutable(p)
	require.NoError(t, err)
	assert.Equal(t, process.DentryDescriptor{
		Name:        "myprog",
		InodeUID:    1000,
		InodeNumber: 99,
		InodeFlags:  0,
	}, d)
}

func TestResolveExecutable_Snapshot(t *testing.T) {
	p := process_dump.NewProcessDump(1234)
	p.SetExecutable("/usr/local/bin/myprog", 1000, 99, 0)

	d, err := ResolveExecutable(p)
	require.NoError(t, err)

	p.Exe.Dentry.Name = "renamed"
	p.Exe.Dentry.Inode.UID = 0
	p.Exe.Dentry.Inode.Flags = 0x10

	assert.Equal(t, "myprog", d.Name)
	assert.Equal(t, uint32(1000), d.InodeUID)
	assert.Equal(t, uint32(0), d.InodeFlags)
}

func TestResolveExecutable_Preconditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *process_dump.ProcessDump)
		want  error
	}{
		{
			name:  "no memory map",
			setup: func(p *process_dump.ProcessDump) { p.Kernel = true },
			want:  process.ErrNoMemoryMap,
		},
		{
			name:  "no executable file",
			setup: func(p *process_dump.ProcessDump) {},
			want:  process.ErrNoExeFile,
		},
		{
			name: "no directory entry",
			setup: func(p *process_dump.ProcessDump) {
				p.Exe = &process.ExeFile{Path: "/bin/x"}
			},
			want: process.ErrNoDentry,
		},
		{
			name: "no inode",
			setup: func(p *process_dump.ProcessDump) {
				p.Exe = &process.ExeFile{Path: "/bin/x", Dentry: &process.Dentry{Name: "x"}}
			},
			want: process.ErrNoInode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := process_dump.NewProcessDump(1234)
			tt.setup(p)

			_, err := ResolveExecutable(p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
