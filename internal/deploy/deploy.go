// internal/deploy/deploy.go
//
// Deployment sync contract and implementations.
//
// Context
// -------
// Publishing a patch means pushing the site's artifact tree to the host
// that runs its live instance and signalling a restart.  The transport is
// an external collaborator; the control plane depends only on the
// success/failure signal of the two steps.  Syncer is the contract, and
// ExecSyncer is the default implementation shelling out to rsync and an
// operator-supplied restart command.
//
// Both calls are long-running (network copy plus remote restart) and are
// awaited to completion; the caller's context is the only cancellation
// mechanism.
package deploy

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Syncer pushes an artifact tree to the live instance and restarts it.
type Syncer interface {
	Push(ctx context.Context, siteID, artifactDir string) error
	Restart(ctx context.Context, siteID string) error
}

//
// ExecSyncer
//

// ExecSyncer shells out to rsync for the copy and to a configured command
// for the restart.  The restart command receives the site id as its final
// argument.
type ExecSyncer struct {
	target     string // rsync destination, e.g. deploy@host:/srv/sites
	restartCmd string
	log        *zap.SugaredLogger
}

// NewExecSyncer returns a Syncer over rsync and a restart command.
func NewExecSyncer(target, restartCommand string, log *zap.SugaredLogger) *ExecSyncer {
	return &ExecSyncer{target: target, restartCmd: restartCommand, log: log}
}

// Push mirrors the artifact tree into <target>/<siteID>/.
func (s *ExecSyncer) Push(ctx context.Context, siteID, artifactDir string) error {
	dst := strings.TrimRight(s.target, "/") + "/" + siteID + "/"
	cmd := exec.CommandContext(ctx, "rsync", "-az", "--delete", artifactDir+"/", dst)

	s.log.Debugw("pushing artifact tree", "site", siteID, "dst", dst)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("push site %s: %w: %s", siteID, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Restart invokes the configured restart command for the site.
func (s *ExecSyncer) Restart(ctx context.Context, siteID string) error {
	if s.restartCmd == "" {
		return fmt.Errorf("restart site %s: no restart command configured", siteID)
	}

	parts := strings.Fields(s.restartCmd)
	parts = append(parts, siteID)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	s.log.Debugw("restarting live instance", "site", siteID)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("restart site %s: %w: %s", siteID, err, strings.TrimSpace(string(out)))
	}
	return nil
}

//
// NopSyncer
//

// NopSyncer logs and succeeds.  Used for dry runs and local development
// where no live instance exists.
type NopSyncer struct {
	log *zap.SugaredLogger
}

// NewNopSyncer returns the no-op Syncer.
func NewNopSyncer(log *zap.SugaredLogger) *NopSyncer {
	return &NopSyncer{log: log}
}

func (s *NopSyncer) Push(_ context.Context, siteID, artifactDir string) error {
	s.log.Infow("dry-run push skipped", "site", siteID, "dir", artifactDir)
	return nil
}

func (s *NopSyncer) Restart(_ context.Context, siteID string) error {
	s.log.Infow("dry-run restart skipped", "site", siteID)
	return nil
}
