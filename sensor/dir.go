package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seqsense/pcgol/pc"
)

// DirSource replays the .pcd files of a directory in lexical order, one
// file per frame. It stands in for a live sensor when replaying recorded
// captures.
type DirSource struct {
	Dir string
	// Loop rewinds to the first file after the last one.
	Loop bool

	files []string
	pos   int
}

// NewDirSource lists the .pcd files under dir. The listing is taken once;
// files added later are not picked up.
func NewDirSource(dir string) (*DirSource, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pcd") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no .pcd files in %s", dir)
	}
	return &DirSource{Dir: dir, files: files}, nil
}

// Next implements Source.
func (d *DirSource) Next(ctx context.Context) (*pc.PointCloud, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.pos >= len(d.files) {
		if !d.Loop || len(d.files) == 0 {
			return nil, ErrExhausted
		}
		d.pos = 0
	}
	path := d.files[d.pos]
	d.pos++

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pp, err := pc.Unmarshal(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pp, nil
}
