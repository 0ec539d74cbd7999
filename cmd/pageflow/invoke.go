package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/pageflow/internal/presentation/tui"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <path>",
	Short: "Invoke a page in-process and print the response",
	Long: `Runs one request through the HTTP host without listening on a port.
Markdown bodies are rendered when stdout is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		method, _ := cmd.Flags().GetString("method")
		data, _ := cmd.Flags().GetString("data")
		raw, _ := cmd.Flags().GetBool("raw")

		out := cmd.OutOrStdout()
		var render func(string) (string, error)
		if fd, ok := terminalFd(out); ok && !raw {
			width, _, _ := term.GetSize(fd)
			if render, err = tui.NewRenderer(width); err != nil {
				a.logger.Warn("Markdown rendering disabled", "err", err)
			}
		}

		status, err := invoke(a.server(), out, cmd.ErrOrStderr(), invokeRequest{
			Method: method,
			Path:   args[0],
			Data:   data,
		}, render)
		if err != nil {
			return err
		}
		if fail, _ := cmd.Flags().GetBool("fail"); fail && status >= 400 {
			return fmt.Errorf("page answered %d %s", status, http.StatusText(status))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringP("method", "X", http.MethodGet, "HTTP method")
	invokeCmd.Flags().StringP("data", "d", "", "Form encoded request body")
	invokeCmd.Flags().Bool("raw", false, "Print the body without rendering")
	invokeCmd.Flags().Bool("fail", false, "Exit with an error on 4xx and 5xx responses")
}

type invokeRequest struct {
	Method string
	Path   string
	Data   string
}

type handlerSource interface {
	Handler() http.Handler
}

// invoke writes the status line to errOut and the body to out.
func invoke(host handlerSource, out, errOut io.Writer, in invokeRequest, render func(string) (string, error)) (int, error) {
	if !strings.HasPrefix(in.Path, "/") {
		return 0, fmt.Errorf("path must start with '/': %q", in.Path)
	}

	var body io.Reader
	if in.Data != "" {
		body = strings.NewReader(in.Data)
	}
	req := httptest.NewRequest(strings.ToUpper(in.Method), in.Path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	rec := httptest.NewRecorder()
	host.Handler().ServeHTTP(rec, req)

	contentType := rec.Header().Get("Content-Type")
	fmt.Fprintf(errOut, "%d %s (%s)\n", rec.Code, http.StatusText(rec.Code), contentType)
	_, err := io.WriteString(out, tui.RenderBody(contentType, rec.Body.String(), render))
	return rec.Code, err
}
