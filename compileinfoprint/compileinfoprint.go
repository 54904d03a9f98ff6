// compileinfoprint is imported by every nucleipq command for the side effect
// of printing the compileinfo to os.Stderr before any output is produced.
package compileinfoprint

import "github.com/carbocation/nucleipq/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
