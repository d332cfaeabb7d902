// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs one-shot containers under docker or podman with the
// caller's stdin and stdout attached, so an image can act as a filter. The
// imagemagick codec uses it to convert images without a local install.
package container

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"
)

// Runtime is a container engine able to run an image as a filter.
type Runtime interface {
	// Name is the engine's binary name.
	Name() string

	// Available reports whether the binary is on PATH and answers "info".
	Available() bool

	// ImageExists returns nil when image is present locally.
	ImageExists(image string) error

	// Run starts image with args, streaming stdin into it and its stdout
	// into stdout. The container's stderr ends up in the returned error.
	Run(image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// engine describes how one container CLI is driven.
type engine struct {
	bin        string
	imageCheck []string
}

// engines lists the supported CLIs in detection order.
var engines = []engine{
	{bin: "docker", imageCheck: []string{"image", "inspect"}},
	{bin: "podman", imageCheck: []string{"image", "exists"}},
}

// streams are attached to a started command. Nil fields mean none.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// commander starts processes; tests substitute a fake.
type commander interface {
	LookPath(file string) (string, error)
	Command(name string, args []string, s streams) error
}

type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osCommander) Command(name string, args []string, s streams) error {
	cmd := exec.Command(name, args...)
	if s.in != nil {
		cmd.Stdin = s.in
	}
	if s.out != nil {
		cmd.Stdout = s.out
	}
	if s.err != nil {
		cmd.Stderr = s.err
	}
	return cmd.Run()
}

// cli is a Runtime backed by one engine.
type cli struct {
	engine
	cmd commander
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available() bool {
	if _, err := c.cmd.LookPath(c.bin); err != nil {
		return false
	}
	return c.cmd.Command(c.bin, []string{"info"}, streams{}) == nil
}

func (c *cli) ImageExists(image string) error {
	args := append(slices.Clone(c.imageCheck), image)
	if err := c.cmd.Command(c.bin, args, streams{}); err != nil {
		return fmt.Errorf("%s: image %s not present: %w", c.bin, image, err)
	}
	return nil
}

// Run uses "run --rm -i --network none <image> args...". Conversions need no
// network and leave no container behind.
func (c *cli) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	full := append([]string{"run", "--rm", "-i", "--network", "none", image}, args...)

	var stderr bytes.Buffer
	err := c.cmd.Command(c.bin, full, streams{in: stdin, out: stdout, err: &stderr})
	if err == nil {
		return nil
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s run %s: %w: %s", c.bin, image, err, msg)
	}
	return fmt.Errorf("%s run %s: %w", c.bin, image, err)
}

// DetectRuntime returns the first installed and responsive engine, trying
// docker before podman.
func DetectRuntime() (Runtime, error) {
	return detect(osCommander{})
}

func detect(cmd commander) (Runtime, error) {
	tried := make([]string, 0, len(engines))
	for _, e := range engines {
		rt := &cli{engine: e, cmd: cmd}
		if rt.Available() {
			return rt, nil
		}
		tried = append(tried, e.bin)
	}
	return nil, fmt.Errorf("no container runtime available (tried %s)", strings.Join(tried, ", "))
}
