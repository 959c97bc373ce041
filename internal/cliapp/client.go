package cliapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/leta/internal/errs"
	"github.com/dshills/leta/internal/ipc"
)

// responseError is the CLI-side reconstruction of an {error, kind,
// detail} IPC response (§7), carrying enough to pick an exit code and
// print "Error: <kind>: <detail>".
type responseError struct {
	Kind       string
	Detail     string
	Candidates []string
}

func (e *responseError) Error() string {
	if e.Kind == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// daemonClient is a single-use connection: one request, one response.
type daemonClient struct {
	conn net.Conn
}

func dialDaemon(socketPath string) (*daemonClient, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to daemon: %v", errs.ErrIO, err)
	}
	return &daemonClient{conn: conn}, nil
}

func (c *daemonClient) Close() error { return c.conn.Close() }

// call sends one {op, params, format} request and parses the response
// envelope, returning the "payload" field on success or a
// *responseError on failure.
func (c *daemonClient) call(op string, params any, format string) (gjson.Result, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", errs.ErrUsage, err)
	}
	req := ipc.Request{Op: op, Params: paramsJSON, Format: format}
	body, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, err
	}
	if err := ipc.WriteFrame(c.conn, body); err != nil {
		return gjson.Result{}, err
	}
	respBody, err := ipc.ReadFrame(c.conn)
	if err != nil {
		return gjson.Result{}, err
	}

	resp := gjson.ParseBytes(respBody)
	if resp.Get("error").Bool() {
		rerr := &responseError{
			Kind:   resp.Get("kind").String(),
			Detail: resp.Get("detail").String(),
		}
		for _, c := range resp.Get("candidates").Array() {
			rerr.Candidates = append(rerr.Candidates, c.String())
		}
		return gjson.Result{}, rerr
	}
	return resp.Get("payload"), nil
}

// exitCodeFor maps an error from call() to §4.10's exit code scheme.
func exitCodeFor(err error) int {
	var rerr *responseError
	if errors.As(err, &rerr) {
		return errs.ExitCode(errs.Kind(rerr.Kind))
	}
	return errs.ExitCode(errs.Classify(err))
}
