package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/vm"
)

// addList collects repeated -add flags.
type addList []string

func (a *addList) String() string { return strings.Join(*a, ",") }

func (a *addList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

// msgFlag is a -msg value that must fit the 32-bit message id.
type msgFlag uint32

func (m *msgFlag) String() string { return strconv.FormatUint(uint64(*m), 10) }

func (m *msgFlag) Set(v string) error {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fmt.Errorf("message id %q: must be an integer in [0, 4294967295]", v)
	}
	*m = msgFlag(n)
	return nil
}

// appendArg parses "type:value" and appends it to ser. Text values pass
// through the managed runtime the same way a host call would.
func appendArg(conv *bridge.Converter, ser ipc.Serializer, spec string) error {
	kind, value, _ := strings.Cut(spec, ":")
	env := conv.Env()

	switch strings.ToLower(kind) {
	case "int32", "i32":
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("int32 %q: %w", value, err)
		}
		return ser.AddInt32(int32(v))
	case "int64", "i64":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("int64 %q: %w", value, err)
		}
		return ser.AddInt64(v)
	case "float", "f32":
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("float %q: %w", value, err)
		}
		return ser.AddFloat(float32(v))
	case "double", "f64":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("double %q: %w", value, err)
		}
		return ser.AddDouble(v)
	case "string", "str":
		return withManagedString(env, value, func(s vm.Ref) error {
			return conv.AddString(ser, s)
		})
	case "json":
		return withManagedString(env, value, func(s vm.Ref) error {
			return conv.AddJSONString(ser, s)
		})
	case "hex":
		raw, err := hex.DecodeString(value)
		if err != nil {
			return fmt.Errorf("hex %q: %w", value, err)
		}
		return ser.AddBytes(raw)
	case "bytes":
		arr, err := bridge.NewByteArray(env, &value)
		if err != nil {
			return err
		}
		defer env.DeleteLocalRef(arr)
		text, err := bridge.BytesToString(env, arr)
		if err != nil {
			return err
		}
		return ser.AddBytes([]byte(text))
	case "void":
		return ser.AddVoid()
	default:
		return fmt.Errorf("unknown argument type %q (want int32, int64, float, double, string, json, bytes, hex, void)", kind)
	}
}

func withManagedString(env vm.Env, text string, fn func(vm.Ref) error) error {
	s, err := bridge.NewString(env, &text)
	if err != nil {
		return err
	}
	defer env.DeleteLocalRef(s)
	return fn(s)
}

// describeArgs renders every argument through the bridge extractors.
func describeArgs(conv *bridge.Converter, args ipc.Arguments) ([]string, error) {
	lines := make([]string, 0, args.Count())
	for i := 0; i < args.Count(); i++ {
		line, err := describeArg(conv, args, i)
		if err != nil {
			return lines, fmt.Errorf("argument %d: %w", i, err)
		}
		lines = append(lines, fmt.Sprintf("%3d %-11s %s", i, args.TypeOf(i), line))
	}
	return lines, nil
}

func describeArg(conv *bridge.Converter, args ipc.Arguments, i int) (string, error) {
	switch args.TypeOf(i) {
	case ipc.TypeByteArray:
		buf, err := conv.Text(args, i)
		if err != nil {
			return "", err
		}
		defer buf.Release()
		return fmt.Sprintf("%q (native @%d, %d bytes)", buf.String(), buf.Ptr(), buf.Len()), nil

	case ipc.TypeString:
		env := conv.Env()
		s, err := conv.ManagedString(args, i)
		if err != nil {
			return "", err
		}
		defer env.DeleteLocalRef(s)
		utf, err := conv.DecodeFast(s)
		if err != nil {
			return "", err
		}
		raw, err := conv.Decode(s)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q (%s % x)", utf, conv.Charset(), []byte(raw)), nil

	case ipc.TypeJSONString:
		v, _ := bridge.ArgumentAsJSON(args, i)
		return v, nil

	case ipc.TypeInt32:
		v, _ := bridge.ArgumentAsInt32(args, i)
		return strconv.FormatInt(int64(v), 10), nil

	case ipc.TypeInt64:
		v, _ := bridge.ArgumentAsInt64(args, i)
		return strconv.FormatInt(v, 10), nil

	case ipc.TypeDouble:
		v, _ := bridge.ArgumentAsDouble(args, i)
		return strconv.FormatFloat(v, 'g', -1, 64), nil

	default:
		return ipc.Describe(args, i), nil
	}
}
