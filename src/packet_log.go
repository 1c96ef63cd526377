package lorarx

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Save decoded packets to a log file.
 *
 * Description:	Rather than the raw symbol stream, write separated
 *		properties in CSV format for easy reading and later
 *		processing.
 *
 *		There are two alternatives here.  A full file path gets a
 *		single file, typically kept under control with logrotate.
 *		A directory gets automatic daily file names, UTC.
 *
 *------------------------------------------------------------------*/

var packetLogHeader = []string{
	"utime", "isotime", "symbols", "nibbles", "uncorrectable", "data",
}

// PacketLog appends one CSV line per decoded packet.  The file stays open
// between packets; daily mode closes and reopens when the date rolls over.
// Not safe for concurrent Write calls.
type PacketLog struct {
	dailyNames bool
	path       string // directory (daily mode) or file name
	f          *os.File
	w          *csv.Writer
	openName   string // name of the currently open daily file
}

/*------------------------------------------------------------------
 *
 * Name:	NewPacketLog
 *
 * Purpose:	Set up packet logging at application start.
 *
 * Inputs:	dailyNames	- True for automatic daily file names.
 *				  In this case path is a directory.
 *				  When false, path is the file name.
 *
 *		path		- Log file name or just directory.
 *				  Empty string disables the feature.
 *
 *------------------------------------------------------------------*/

func NewPacketLog(dailyNames bool, path string) *PacketLog {
	var pl = &PacketLog{dailyNames: dailyNames}

	if len(path) == 0 {
		return pl
	}

	if !dailyNames {
		pl.path = path
		return pl
	}

	var stat, statErr = os.Stat(path)
	if statErr == nil {
		if stat.IsDir() {
			pl.path = path
		} else {
			log.Error("packet log location is not a directory, using \".\"", "path", path)
			pl.path = "."
		}
		return pl
	}

	// Doesn't exist.  Try to create it.  The parent directory must
	// already exist; we don't create multiple levels like "mkdir -p".
	if mkdirErr := os.Mkdir(path, 0755); mkdirErr != nil {
		log.Error("failed to create packet log location, using \".\"",
			"path", path, "err", mkdirErr)
		pl.path = "."
		return pl
	}

	log.Info("created packet log location", "path", path)
	pl.path = path
	return pl
}

func (pl *PacketLog) open(fullPath string) {
	// See if the file already exists and so already has a header line.
	var _, statErr = os.Stat(fullPath)
	var alreadyThere = statErr == nil

	var f, openErr = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if openErr != nil {
		log.Error("can't open packet log for write", "path", fullPath, "err", openErr)
		return
	}

	pl.f = f
	pl.w = csv.NewWriter(f)

	// Write a header suitable for importing into a spreadsheet, only if
	// this will be the first line.
	if !alreadyThere {
		pl.w.Write(packetLogHeader) //nolint:errcheck
	}
}

/*------------------------------------------------------------------
 *
 * Name:	Write
 *
 * Purpose:	Save one decoded packet to the log file.
 *
 * Inputs:	symbols		- Raw symbols in, for the size column.
 *
 *		nibbles		- Decoder output, logged as one hex digit
 *				  per nibble.
 *
 *		uncorrectable	- Count of codewords beyond correction,
 *				  from DecodeDetail.
 *
 *------------------------------------------------------------------*/

func (pl *PacketLog) Write(symbols []uint16, nibbles []byte, uncorrectable int) {
	if len(pl.path) == 0 {
		return
	}

	var now = time.Now().UTC()

	if pl.dailyNames {
		// Generate the file name from the current date, UTC.
		var fname = now.Format("2006-01-02.log")

		// Close the current file if the name has changed.
		if pl.f != nil && fname != pl.openName {
			pl.Close()
		}

		if pl.f == nil {
			pl.open(filepath.Join(pl.path, fname))
			pl.openName = fname
		}
	} else if pl.f == nil {
		pl.open(pl.path)
	}

	if pl.f == nil {
		return
	}

	var data = make([]byte, 0, len(nibbles))
	for _, n := range nibbles {
		data = append(data, "0123456789abcdef"[n&0x0F])
	}

	pl.w.Write([]string{ //nolint:errcheck
		strconv.FormatInt(now.Unix(), 10),
		now.Format("2006-01-02T15:04:05Z"),
		strconv.Itoa(len(symbols)),
		strconv.Itoa(len(nibbles)),
		strconv.Itoa(uncorrectable),
		string(data),
	})
	pl.w.Flush()

	if err := pl.w.Error(); err != nil {
		log.Error("packet log write failed", "err", err)
	}
}

// Close flushes and closes the current file, if any.  Write reopens as
// needed, so Close is also how daily mode rolls over.
func (pl *PacketLog) Close() {
	if pl.f == nil {
		return
	}

	pl.w.Flush()
	if err := pl.f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing packet log: %s\n", err)
	}
	pl.f = nil
	pl.w = nil
	pl.openName = ""
}
