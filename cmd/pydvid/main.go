// Command-line interface to a remote DVID voxel volume.
// Provides essential volume commands: about, metadata, get, post.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thatcher/pydvid/dvid"
	"github.com/thatcher/pydvid/transport"
	"github.com/thatcher/pydvid/voxels"
)

var (
	// Display usage if true.
	showHelp = flag.Bool("help", false, "")

	// Run in verbose mode if true.
	runVerbose = flag.Bool("verbose", false, "")

	// Address of the remote server.
	serverAddr = flag.String("server", "localhost:8000", "")

	// Path to a TOML configuration file.  Overrides -server when set.
	configFile = flag.String("config", "", "")

	// Compression format for voxel transfers: "snappy", "lz4", or "gzip".
	compressName = flag.String("compression", "", "")

	// Ask the server to queue large transfers instead of rejecting them.
	throttleOn = flag.Bool("throttle", true, "")
)

const helpMessage = `
pydvid is a command-line interface to voxel volumes on a remote DVID server

Usage: pydvid [options] <command>

      -server      =string   Address of the remote server (default "localhost:8000").
      -config      =string   Path to a TOML configuration file; overrides -server.
      -compression =string   Compression for voxel transfers: snappy, lz4, or gzip.
      -throttle    (flag)    Ask the server to queue large transfers (default true).
      -verbose     (flag)    Run in verbose mode.
  -h, -help        (flag)    Show help message

Commands:

	about
	metadata <uuid> <data name>
	get      <uuid> <data name> <start> <stop> <file>
	post     <uuid> <data name> <start> <stop> <file>

Bounds are comma-separated channel-first coordinates, e.g. "0,10,20,30".
Transferred files hold the raw little-endian buffer, channel varying fastest.
`

var usage = func() {
	fmt.Print(helpMessage)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	if *runVerbose {
		dvid.Verbose = true
		dvid.SetLogMode(dvid.DebugMode)
	} else {
		dvid.SetLogMode(dvid.InfoMode)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	conn, retry, err := connect()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch args[0] {
	case "about":
		return about(ctx, conn)
	case "metadata":
		if len(args) != 3 {
			return fmt.Errorf("usage: pydvid metadata <uuid> <data name>")
		}
		return printMetadata(ctx, conn, retry, args[1], args[2])
	case "get", "post":
		if len(args) != 6 {
			return fmt.Errorf("usage: pydvid %s <uuid> <data name> <start> <stop> <file>", args[0])
		}
		return transfer(ctx, conn, retry, args)
	default:
		return fmt.Errorf("unknown command %q; use -help for usage", args[0])
	}
}

func connect() (*transport.HTTPConnection, transport.RetryPolicy, error) {
	if *configFile != "" {
		config, err := transport.LoadConfig(*configFile)
		if err != nil {
			return nil, transport.RetryPolicy{}, err
		}
		conn, err := config.NewConnection()
		return conn, config.RetryPolicy(), err
	}
	conn, err := transport.NewHTTPConnection(*serverAddr, nil)
	return conn, transport.DefaultRetryPolicy, err
}

func about(ctx context.Context, conn *transport.HTTPConnection) error {
	info, err := transport.GetServerInfo(ctx, conn)
	if err != nil {
		return err
	}
	fmt.Printf("Server:       %s\n", conn.Addr())
	fmt.Printf("DVID Version: %s\n", info.DVIDVersion)
	if info.Host != "" {
		fmt.Printf("Host:         %s\n", info.Host)
	}
	if err := info.CheckVersion(); err != nil {
		return err
	}
	fmt.Printf("Version handshake OK\n")
	return nil
}

func accessorOptions(retry transport.RetryPolicy) ([]voxels.Option, error) {
	compression, err := dvid.NewCompressionByName(*compressName)
	if err != nil {
		return nil, err
	}
	return []voxels.Option{
		voxels.Retry(retry),
		voxels.Compress(compression),
		voxels.Throttle(*throttleOn),
	}, nil
}

func printMetadata(ctx context.Context, conn *transport.HTTPConnection, retry transport.RetryPolicy, uuid, name string) error {
	opts, err := accessorOptions(retry)
	if err != nil {
		return err
	}
	accessor, err := voxels.New(ctx, conn, dvid.UUID(uuid), dvid.InstanceName(name), opts...)
	if err != nil {
		return err
	}
	doc, err := accessor.Metadata().ToJSON()
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", doc)
	return nil
}

func transfer(ctx context.Context, conn *transport.HTTPConnection, retry transport.RetryPolicy, args []string) error {
	beg, err := dvid.StringToPointNd(args[3], ",")
	if err != nil {
		return fmt.Errorf("bad start coordinate %q: %w", args[3], err)
	}
	end, err := dvid.StringToPointNd(args[4], ",")
	if err != nil {
		return fmt.Errorf("bad stop coordinate %q: %w", args[4], err)
	}
	if len(beg) != len(end) {
		return fmt.Errorf("start %q and stop %q differ in dimension", args[3], args[4])
	}
	opts, err := accessorOptions(retry)
	if err != nil {
		return err
	}
	accessor, err := voxels.New(ctx, conn, dvid.UUID(args[1]), dvid.InstanceName(args[2]), opts...)
	if err != nil {
		return err
	}

	filename := args[5]
	if args[0] == "get" {
		array, err := accessor.GetNDArray(ctx, beg, end)
		if err != nil {
			return err
		}
		return os.WriteFile(filename, array.Data(), 0644)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	array, err := voxels.NDArrayFromBytes(data, end.Sub(beg), accessor.Metadata().DataType())
	if err != nil {
		return err
	}
	return accessor.PostNDArray(ctx, beg, end, array)
}
