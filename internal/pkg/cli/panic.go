package cli

import (
	"bytes"
	"runtime/debug"
	"text/template"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

const userFriendlyPanicTmpl = `
---------------------------------------------------
Geoloader had a problem and crashed.

To help us diagnose the problem you can send us a crash report.

{{ if .LogFile -}}
We have generated a log file at "{{.LogFile}}".

Please open an issue in the project repository and include the log file as an attachment.
{{- else -}}
Please run the command again with the flag "--log-file <path>" to generate a log file.

Then please open an issue in the project repository and include the log file as an attachment.
{{- end }}

We take privacy seriously, and do not perform any automated log file collection.

Thank you kindly!`

// ProcessPanic logs the panic and returns the exit code of the process.
func ProcessPanic(err any, logger log.Logger, logFilePath string) int {
	logger.Debugf("Unexpected panic: %s", err)
	logger.Debugf("Trace:\n" + string(debug.Stack()))
	logger.Info(panicMessage(logFilePath))
	return 1
}

func panicMessage(logFile string) string {
	tmpl, err := template.New("panicMsg").Parse(userFriendlyPanicTmpl)
	if err != nil {
		panic(errors.Errorf("cannot parse panic template: %w", err))
	}

	var output bytes.Buffer
	err = tmpl.Execute(
		&output,
		struct{ LogFile string }{logFile},
	)
	if err != nil {
		panic(errors.Errorf("cannot render panic template: %w", err))
	}

	return output.String()
}
