package jsonutil_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/drblury/dbwait/jsonutil"
)

func Example() {
	type targetStatus struct {
		Target  string `json:"target"`
		Attempt int    `json:"attempt"`
		State   string `json:"state"`
	}

	status := targetStatus{Target: "postgres", Attempt: 3, State: "ready"}

	data, _ := jsonutil.Marshal(status)
	fmt.Println(string(data))

	var decoded targetStatus
	_ = jsonutil.Unmarshal(data, &decoded)
	fmt.Println(decoded.Attempt)

	buf := &bytes.Buffer{}
	_ = jsonutil.Encode(buf, status)

	var streamed targetStatus
	_ = jsonutil.Decode(buf, &streamed)
	fmt.Println(streamed.State)

	// Output:
	// {"target":"postgres","attempt":3,"state":"ready"}
	// 3
	// ready
}

func ExampleMarshalIndent() {
	type policy struct {
		Targets     []string `json:"targets"`
		MaxAttempts int      `json:"maxAttempts"`
	}

	data, err := jsonutil.MarshalIndent(policy{Targets: []string{"postgres", "redis"}, MaxAttempts: 30}, "", "  ")
	if err != nil {
		fmt.Println("marshal error:", err)
		return
	}
	fmt.Println(strings.TrimSpace(string(data)))

	// Output:
	// {
	//   "targets": [
	//     "postgres",
	//     "redis"
	//   ],
	//   "maxAttempts": 30
	// }
}

func ExampleEncode_stream() {
	buf := &bytes.Buffer{}
	if err := jsonutil.Encode(buf, map[string]int{"failures": 2, "attempts": 3}); err != nil {
		fmt.Println("encode error:", err)
		return
	}
	fmt.Print(buf.String())

	// Output:
	// {"attempts":3,"failures":2}
}
