package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pageinfo/process"
)

func TestRender(t *testing.T) {
	page := &process.PageDescriptor{Flags: 0x2fffff, VirtualAddress: 0x7ffd1000, Mapping: 0xffff8881}
	dentry := &process.DentryDescriptor{Name: "bash", InodeUID: 0, InodeNumber: 131090, InodeFlags: 0x2000}

	tests := []struct {
		name  string
		state State
		want  string
	}{
		{
			name:  "empty",
			state: State{},
			want:  "",
		},
		{
			name:  "descriptors without flags render nothing",
			state: State{Page: page, Dentry: dentry},
			want:  "",
		},
		{
			name:  "page",
			state: State{Flags: FlagPage, Page: page},
			want:  "Page:\n\tFlags: 2fffff\n\tVirtual address: 7ffd1000\n\tMapping: 00000000ffff8881\n",
		},
		{
			name:  "dentry",
			state: State{Flags: FlagDentry, Dentry: dentry},
			want:  "Dentry:\n\tName: bash\n\tInode UID: 0\n\tInode number: 131090\n\tInode flags: 2000\n",
		},
		{
			name:  "page missing",
			state: State{Flags: FlagPage | FlagDentry, Dentry: dentry},
			want:  pageErrorLine + "Dentry:\n\tName: bash\n\tInode UID: 0\n\tInode number: 131090\n\tInode flags: 2000\n",
		},
		{
			name:  "page not found",
			state: State{Flags: FlagPage, PageNotFound: true},
			want:  pageNotFoundLine,
		},
		{
			name:  "both missing",
			state: State{Flags: FlagPage | FlagDentry},
			want:  pageErrorLine + dentryErrorLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.state))
		})
	}
}

func TestFlags(t *testing.T) {
	assert.True(t, (FlagPage | FlagDentry).Valid())
	assert.True(t, Flags(0).Valid())
	assert.False(t, Flags(0b100).Valid())
	assert.False(t, Flags(-1).Valid())

	assert.Equal(t, "NONE", Flags(0).String())
	assert.Equal(t, "PAGE|DENTRY", (FlagPage | FlagDentry).String())
	assert.Equal(t, "PAGE|0b100", Flags(0b101).String())
}
