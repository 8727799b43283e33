package fetcher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/crypto/sha3"
)

var hashNames = []string{
	"md5",
	"sha1",
	"sha256",
	"sha3-256",
}

// Sums returns "name:hex" digests of a local artifact.
func Sums(fs billy.Basic, path string) (sums []string, err error) {
	f, err := fs.Open(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	hashes := []hash.Hash{
		md5.New(),
		sha1.New(),
		sha256.New(),
		sha3.New256(),
	}
	ww := make([]io.Writer, len(hashes))
	for i, h := range hashes {
		ww[i] = h
	}
	if _, err := io.Copy(io.MultiWriter(ww...), f); err != nil {
		return nil, err
	}

	sums = make([]string, len(hashes))
	for i, name := range hashNames {
		sums[i] = fmt.Sprintf("%s:%x", name, hashes[i].Sum(nil))
	}
	return sums, nil
}
