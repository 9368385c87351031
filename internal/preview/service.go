// Package preview turns URLs posted in chat into rendered link previews.
//
// Each URL spawns one external render task. The task writes a screenshot to
// the sandbox directory and reports metadata as "key: value" lines on stdout;
// when it exits, a follow-up system message is composed from whatever was
// captured and handed back to the room.
package preview

import (
	"bufio"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Notifier receives the composed follow-up message for a room. The hub plugs
// in its system-message broadcast here.
type Notifier func(room, body string)

// Service launches and correlates render tasks.
type Service struct {
	command    string
	args       []string
	sandboxDir string
	urlRoot    string
	notify     Notifier
	log        *zerolog.Logger

	wg sync.WaitGroup
}

// NewService builds the pipeline. command is the renderer binary, args are its
// leading arguments; the URL and output path are appended per task.
func NewService(command string, args []string, sandboxDir, urlRoot string, notify Notifier, logger *zerolog.Logger) *Service {
	return &Service{
		command:    command,
		args:       args,
		sandboxDir: sandboxDir,
		urlRoot:    urlRoot,
		notify:     notify,
		log:        logger,
	}
}

// task is the correlation record for one launched render process. Every task
// owns its fields map; concurrent tasks never share state.
type task struct {
	url      string
	room     string
	fileName string
	fields   map[string]string
}

// Process extracts preview-worthy URLs from body and launches one render task
// per URL. It returns immediately; follow-up messages arrive asynchronously.
// The chat message itself has already been delivered, so nothing here can
// disturb it.
func (s *Service) Process(room, body string) {
	for _, url := range ExtractURLs(body) {
		t := &task{
			url:      url,
			room:     room,
			fileName: uuid.NewString() + ".jpg",
			fields:   make(map[string]string),
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run(t)
		}()
	}
}

// Wait blocks until all in-flight render tasks have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(t *task) {
	output := filepath.Join(s.sandboxDir, t.fileName)
	args := append(append([]string{}, s.args...), t.url, output)
	cmd := exec.Command(s.command, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.log.Error().Err(err).Str("url", t.url).Msg("preview stdout pipe")
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.log.Error().Err(err).Str("url", t.url).Msg("preview stderr pipe")
		return
	}
	if err := cmd.Start(); err != nil {
		s.log.Error().Err(err).Str("url", t.url).Str("command", s.command).Msg("preview spawn failed")
		return
	}

	s.log.Debug().Str("url", t.url).Str("room", t.room).Str("file", t.fileName).Msg("processing preview")

	var stderrDone sync.WaitGroup
	stderrDone.Add(1)
	go func() {
		defer stderrDone.Done()
		errScanner := bufio.NewScanner(stderr)
		for errScanner.Scan() {
			s.log.Debug().Str("url", t.url).Str("line", errScanner.Text()).Msg("renderer stderr")
		}
	}()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		s.collect(t, scanner.Text())
	}
	stderrDone.Wait()

	if err := cmd.Wait(); err != nil {
		// Non-zero exit degrades to whatever fields were captured.
		s.log.Warn().Err(err).Str("url", t.url).Msg("preview renderer exited with error")
	}

	s.notify(t.room, s.compose(t))
}

// collect accumulates one "key: value" stdout line into the task's record.
func (s *Service) collect(t *task, line string) {
	m := paramLinePattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	t.fields[m[1]] = m[2]
}

// compose builds the follow-up message body. Message text varies with the
// captured fields: title and excerpt, title only, or the bare sandbox link.
func (s *Service) compose(t *task) string {
	link := s.urlRoot + "sandbox/" + t.fileName
	title, excerpt := t.fields["title"], t.fields["excerpt"]

	switch {
	case title != "" && excerpt != "":
		return fmt.Sprintf(`<<%s>>: "%s" (%s) %s`, title, excerpt, t.url, link)
	case title != "":
		return fmt.Sprintf("<<%s>> (%s) %s", title, t.url, link)
	default:
		return link
	}
}
