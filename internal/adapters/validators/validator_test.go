package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepoSplit(t *testing.T) {
	r := Repo("octocat/hello-world")
	owner, name, err := r.Split()
	assert.NoError(t, err)
	assert.Equal(t, "octocat", owner)
	assert.Equal(t, "hello-world", name)

	for _, bad := range []string{"", "octocat", "a/b/c", "/name", "owner/"} {
		r := Repo(bad)
		_, _, err := r.Split()
		assert.ErrorIs(t, err, ErrInvalidRepo, bad)
	}
}

func TestUsernameValidate(t *testing.T) {
	valid := []string{"octocat", "just-nibble", "a1"}
	for _, v := range valid {
		u := Username(v)
		assert.NoError(t, u.Validate(), v)
	}

	invalid := []string{"", "-lead", "trail-", "has space", "under_score"}
	for _, v := range invalid {
		u := Username(v)
		assert.Error(t, u.Validate(), v)
	}
}
