package main

/*------------------------------------------------------------------
 *
 * Name:        lora_decode
 *
 * Purpose:     Decode demodulated LoRa symbols from the command line.
 *
 * Description: Reads whitespace-separated symbol values, one packet per
 *		line, from the named files or standard input, and prints
 *		the decoded bytes in hex.  Symbol values may be decimal or
 *		0x-prefixed hex.  Blank lines and lines starting with #
 *		are ignored.
 *
 * Usage:	See the usage function below.
 *
 *----------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	lorarx "github.com/doismellburning/lorarx/src"
)

func main() {
	var profilePath = pflag.StringP("profile", "p", "", "YAML decode profile instead of the individual radio flags.")
	var spreadingFactor = pflag.IntP("spreading-factor", "s", 8, "Spreading factor (6-12).")
	var codeRate = pflag.IntP("code-rate", "c", 4, "Code rate (1-4).")
	var explicitHeader = pflag.BoolP("explicit-header", "H", false, "Explicit header present.")
	var logDir = pflag.StringP("log-dir", "l", "", "Write automatic daily packet logs in this directory.")
	var logFile = pflag.StringP("log-file", "L", "", "Write the packet log to this single file.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede each packet with a 'strftime' format time stamp.")
	var packed = pflag.BoolP("packed", "2", false, "Pack two nibbles per output byte instead of one.")
	var verbose = pflag.BoolP("verbose", "v", false, "Verbose.  Report uncorrectable codewords and other detail.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Decode demodulated LoRa symbols.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Reads one packet per line (decimal or 0x-hex symbol values,\n")
		fmt.Fprintf(os.Stderr, "whitespace separated) from files or stdin, prints hex bytes.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	var config = lorarx.Config{
		SpreadingFactor: *spreadingFactor,
		CodeRate:        *codeRate,
		Header:          *explicitHeader,
	}
	if len(*profilePath) > 0 {
		var profileErr error
		config, profileErr = lorarx.LoadProfile(*profilePath)
		if profileErr != nil {
			log.Fatal("could not load profile", "err", profileErr)
		}
	}

	var decoder, decoderErr = lorarx.NewDecoder(config)
	if decoderErr != nil {
		log.Fatal("bad configuration", "err", decoderErr)
	}

	var stamper *strftime.Strftime
	if len(*timestampFormat) > 0 {
		var stampErr error
		stamper, stampErr = strftime.New(*timestampFormat)
		if stampErr != nil {
			log.Fatal("bad timestamp format", "format", *timestampFormat, "err", stampErr)
		}
	}

	if len(*logDir) > 0 && len(*logFile) > 0 {
		log.Fatal("use either a log directory or a log file, not both")
	}
	var packetLog *lorarx.PacketLog
	if len(*logDir) > 0 {
		packetLog = lorarx.NewPacketLog(true, *logDir)
	} else {
		packetLog = lorarx.NewPacketLog(false, *logFile)
	}
	defer packetLog.Close()

	var readers []io.Reader
	if len(pflag.Args()) == 0 {
		readers = append(readers, os.Stdin)
	} else {
		for _, name := range pflag.Args() {
			var f, openErr = os.Open(name) //nolint:gosec
			if openErr != nil {
				log.Fatal("can't open input", "file", name, "err", openErr)
			}
			defer f.Close()
			readers = append(readers, f)
		}
	}

	for _, r := range readers {
		var scanner = bufio.NewScanner(r)
		for scanner.Scan() {
			var line = strings.TrimSpace(scanner.Text())
			if len(line) == 0 || strings.HasPrefix(line, "#") {
				continue
			}

			var symbols, parseErr = parseSymbols(line)
			if parseErr != nil {
				log.Error("skipping unparseable packet", "err", parseErr)
				continue
			}

			var nibbles, uncorrectable = decoder.DecodeDetail(symbols)
			if uncorrectable > 0 {
				log.Debug("packet had uncorrectable codewords", "count", uncorrectable)
			}
			packetLog.Write(symbols, nibbles, uncorrectable)

			var out = nibbles
			if *packed {
				out = lorarx.PackNibbles(nibbles)
			}

			var prefix = ""
			if stamper != nil {
				prefix = fmt.Sprintf("[%s] ", stamper.FormatString(time.Now()))
			}
			fmt.Printf("%s%s\n", prefix, hexString(out))
		}
		if scanErr := scanner.Err(); scanErr != nil {
			log.Error("read failed", "err", scanErr)
		}
	}
}

// parseSymbols turns one input line into symbol values.
func parseSymbols(line string) ([]uint16, error) {
	var fields = strings.Fields(line)
	var symbols = make([]uint16, 0, len(fields))
	for _, field := range fields {
		var v, err = strconv.ParseUint(field, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("bad symbol value %q: %w", field, err)
		}
		symbols = append(symbols, uint16(v))
	}
	return symbols, nil
}

func hexString(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}
