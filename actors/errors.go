package actors

import "fmt"

func invokeParamErr(invokeID, want string) error {
	return fmt.Errorf("invoke %q: src.Params must be a %s", invokeID, want)
}

func unknownSourceErr(invokeID, srcType string) error {
	return fmt.Errorf("invoke %q: unknown actor source %q", invokeID, srcType)
}
