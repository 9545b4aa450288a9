package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"v.io/x/lib/envvar"
	"v.io/x/lib/lookpath"
)

// Command is a Decoder that runs an external decompressor with all input
// paths as arguments and reads its standard output.
type Command struct {
	// Name is the decompressor to run. It is resolved against $PATH. The
	// default is "zcat".
	Name string
	// Args are passed to the decompressor ahead of the input paths.
	Args []string
}

// Open implements Decoder. The decompressor is started immediately; failure
// to locate or start it is reported here.
func (c *Command) Open(ctx context.Context, paths []string) (io.ReadCloser, error) {
	if len(paths) == 0 {
		return nil, errors.E(errors.Invalid, "source: no input paths")
	}
	name := c.Name
	if name == "" {
		name = CommandName
	}
	bin, err := lookpath.Look(envvar.SliceToMap(os.Environ()), name)
	if err != nil {
		return nil, errors.E(err, "source: locate decompressor", name)
	}
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, bin, append(append([]string{}, c.Args...), paths...)...)
	r := &commandReader{cmd: cmd, cancel: cancel, desc: name + " " + strings.Join(paths, ",")}
	cmd.Stderr = &r.stderr
	if r.out, err = cmd.StdoutPipe(); err != nil {
		cancel()
		return nil, errors.E(err, "source:", r.desc)
	}
	if err = cmd.Start(); err != nil {
		cancel()
		return nil, errors.E(err, "source: start", r.desc)
	}
	log.Debug.Printf("source: started %s (pid %d)", r.desc, cmd.Process.Pid)
	return r, nil
}

type commandReader struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	desc   string
	out    io.ReadCloser
	stderr bytes.Buffer

	drained   bool
	closeOnce sync.Once
	closeErr  error
}

// Read implements io.Reader.
func (r *commandReader) Read(p []byte) (int, error) {
	n, err := r.out.Read(p)
	if err == io.EOF {
		r.drained = true
	} else if err != nil {
		err = errors.E(err, "source: read", r.desc)
	}
	return n, err
}

// Close implements io.Closer. If the output was not fully drained the
// decompressor is killed and its exit status ignored. Otherwise a non-zero
// exit status is returned as an error.
func (r *commandReader) Close() error {
	r.closeOnce.Do(func() {
		if !r.drained {
			r.cancel()
		}
		// Wait closes the stdout pipe.
		err := r.cmd.Wait()
		r.cancel()
		if err != nil && r.drained {
			msg := strings.TrimSpace(r.stderr.String())
			r.closeErr = errors.E(err, "source:", r.desc, msg)
			log.Error.Printf("source: %s failed: %v", r.desc, err)
		}
	})
	return r.closeErr
}
