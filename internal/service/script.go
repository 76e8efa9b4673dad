package service

import (
	"context"
	"os/exec"

	shellwords "github.com/mattn/go-shellwords"
)

// runScript executes a script phrase's command line and returns its
// stdout. Failures of any kind produce an empty replacement; the typed
// hotstring is still consumed, matching how a phrase with an empty body
// behaves.
func (s *Service) runScript(cmdline string) string {
	args, err := shellwords.Parse(cmdline)
	if err != nil {
		s.log.Error("script command line unparsable", "command", cmdline, "error", err)
		return ""
	}
	if len(args) == 0 {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ScriptTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			s.log.Error("script took too long", "command", args[0], "timeout", s.opts.ScriptTimeout)
		} else {
			s.log.Error("script failed", "command", args[0], "error", err)
		}
		return ""
	}
	return string(out)
}
