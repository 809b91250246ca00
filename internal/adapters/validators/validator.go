package validators

import (
	"errors"
	"strings"
)

var ErrInvalidRepo = errors.New("invalid repo")

// Repo is a repository full name in "owner/name" form.
type Repo string

func (r *Repo) Validate() error {
	repoSlice := strings.Split(string(*r), "/")
	if len(repoSlice) != 2 || repoSlice[0] == "" || repoSlice[1] == "" {
		return ErrInvalidRepo
	}

	return nil
}

// Split returns the owner and name parts of the full name.
func (r *Repo) Split() (owner string, name string, err error) {
	if err := r.Validate(); err != nil {
		return "", "", err
	}

	repoSlice := strings.Split(string(*r), "/")
	return repoSlice[0], repoSlice[1], nil
}

// Username is a GitHub login.
type Username string

func (u *Username) Validate() error {
	s := string(*u)
	if s == "" || len(s) > 39 || strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return errors.New("invalid username")
	}
	for _, c := range s {
		if !(c == '-' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return errors.New("invalid username")
		}
	}

	return nil
}
