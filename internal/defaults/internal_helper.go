package defaults

import (
	"fmt"

	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// defineFunctions defines each function as a method of o named after the
// function.
func defineFunctions(o value.Object, funcs ...*NativeFunction) {
	defined := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		name := f.Name()
		if defined[name] {
			panic(fmt.Sprintf("duplicated function name: %s", name))
		}
		defined[name] = true
		defineMethod(o, name, f)
	}
}
