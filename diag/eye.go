package diag

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"k8s.io/klog/v2"

	"github.com/apmismail/switchtec-user/mrpc"
)

// EyeDataMode selects what the capture hardware accumulates per pixel.
type EyeDataMode int

const (
	EyeModeRaw   EyeDataMode = 0 // error and sample counters per pixel
	EyeModeRatio EyeDataMode = 1 // 16.16 fixed-point error ratio per pixel
)

func (m EyeDataMode) String() string {
	switch m {
	case EyeModeRaw:
		return "RAW"
	case EyeModeRatio:
		return "RATIO"
	default:
		return "UNKNOWN"
	}
}

// Eye observation sub-commands.
const (
	eyeSubSetDataMode = 0x01
	eyeSubStart       = 0x02
	eyeSubFetch       = 0x03
	eyeSubCancel      = 0x04
)

// Eye observation wire sizes. The fetch response is a 28-byte header
// followed by pixel data: 16 bytes per pixel in raw mode (error and sample
// counters as lo/hi word pairs), 4 bytes per pixel in ratio mode. The
// response buffer is always sized for the larger layout.
const (
	eyeCmdLen         = 4 // sub(1) mode(1) rsvd(1) status(1)
	eyeStartLen       = 48
	eyeFetchHeaderLen = 28
	eyeMaxRawPixels   = 62
	eyeMaxRatioPixels = 496
	eyeFetchLen       = eyeFetchHeaderLen + 4*eyeMaxRatioPixels
)

// EyeRange is one sweep axis of a capture: start and end offsets plus the
// step between measured points.
type EyeRange struct {
	Start int32
	End   int32
	Step  uint32
}

// EyeConfig parameterizes one eye capture run.
type EyeConfig struct {
	LaneMask     [4]uint32 // lanes to capture, one bit per lane
	Time         EyeRange  // horizontal sweep, time offset
	Voltage      EyeRange  // vertical sweep, voltage offset
	StepInterval uint32    // dwell time per step, in milliseconds
}

// eyeCmd performs one eye observation exchange and classifies the
// completion status byte carried in the response payload.
func (c *Client) eyeCmd(op string, req []byte) error {
	resp := make([]byte, eyeCmdLen)
	if err := c.run(op, mrpc.EyeObserve, req, resp); err != nil {
		return err
	}
	return statusError(op, resp[3])
}

// EyeSetMode selects the pixel data mode for subsequent captures. Must be
// issued while no capture is running.
func (c *Client) EyeSetMode(mode EyeDataMode) error {
	const op = "eye set mode"
	if mode != EyeModeRaw && mode != EyeModeRatio {
		return fmt.Errorf("%s: %w: data mode %d", op, ErrInvalidArgument, mode)
	}
	req := make([]byte, eyeCmdLen)
	req[0] = eyeSubSetDataMode
	req[1] = byte(mode)
	return c.eyeCmd(op, req)
}

// EyeStart begins a capture over the lanes and ranges in cfg. After the
// exchange returns, successfully or not, the client sleeps the settle
// delay so the capture hardware can initialize; the outcome of the
// exchange is returned unchanged after the delay.
func (c *Client) EyeStart(cfg EyeConfig) error {
	req := make([]byte, eyeStartLen)
	req[0] = eyeSubStart
	for i, m := range cfg.LaneMask {
		binary.LittleEndian.PutUint32(req[4+4*i:], m)
	}
	binary.LittleEndian.PutUint32(req[20:], uint32(cfg.Time.Start))
	binary.LittleEndian.PutUint32(req[24:], uint32(cfg.Voltage.Start))
	binary.LittleEndian.PutUint32(req[28:], uint32(cfg.Time.End))
	binary.LittleEndian.PutUint32(req[32:], uint32(cfg.Voltage.End))
	binary.LittleEndian.PutUint32(req[36:], cfg.Time.Step)
	binary.LittleEndian.PutUint32(req[40:], cfg.Voltage.Step)
	binary.LittleEndian.PutUint32(req[44:], cfg.StepInterval)

	err := c.eyeCmd("eye start", req)
	c.sleep(c.settleDelay)
	return err
}

// EyeCancel aborts a running capture and returns the hardware to idle,
// with the same settle discipline as EyeStart.
func (c *Client) EyeCancel() error {
	req := make([]byte, eyeCmdLen)
	req[0] = eyeSubCancel

	err := c.eyeCmd("eye cancel", req)
	c.sleep(c.settleDelay)
	return err
}

// EyeFetch retrieves the pixel data of the next completed lane. While the
// hardware reports busy, the call sleeps the busy interval and retries
// without bound; a caller that needs a hard deadline must impose it around
// this call, there is no out-of-band interrupt. On completion it decodes
// min(count, len(pixels)) samples into pixels using the data mode echoed
// in the response, and returns the lane the data belongs to together with
// the full declared pixel count. A count larger than len(pixels) means the
// caller's buffer truncated the result.
func (c *Client) EyeFetch(pixels []float64) (count, lane int, err error) {
	const op = "eye fetch"
	req := make([]byte, eyeCmdLen)
	req[0] = eyeSubFetch
	resp := make([]byte, eyeFetchLen)

	for {
		if err := c.run(op, mrpc.EyeObserve, req, resp); err != nil {
			return 0, 0, err
		}
		serr := statusError(op, resp[3])
		if serr == nil {
			break
		}
		if !errors.Is(serr, ErrBusy) {
			return 0, 0, serr
		}
		klog.V(1).Infof("%s: capture in progress, retrying in %v", op, c.busyInterval)
		c.sleep(c.busyInterval)
	}

	var mask [4]uint32
	for i := range mask {
		mask[i] = binary.LittleEndian.Uint32(resp[4+4*i:])
	}
	lane = firstLane(mask)

	// 9-bit pixel count: low byte plus a 1-bit high field.
	count = int(resp[24]) | int(resp[25]&1)<<8

	n := count
	if n > len(pixels) {
		n = len(pixels)
	}
	mode := EyeDataMode(resp[1])
	data := resp[eyeFetchHeaderLen:]
	switch mode {
	case EyeModeRaw:
		if n > eyeMaxRawPixels {
			n = eyeMaxRawPixels
		}
		for i := 0; i < n; i++ {
			rec := data[16*i : 16*i+16]
			errCnt := hiLoUint64(binary.LittleEndian.Uint32(rec[4:]), binary.LittleEndian.Uint32(rec[0:]))
			sampleCnt := hiLoUint64(binary.LittleEndian.Uint32(rec[12:]), binary.LittleEndian.Uint32(rec[8:]))
			pixels[i] = rawPixel(errCnt, sampleCnt)
		}
	case EyeModeRatio:
		if n > eyeMaxRatioPixels {
			n = eyeMaxRatioPixels
		}
		for i := 0; i < n; i++ {
			pixels[i] = ratioPixel(binary.LittleEndian.Uint32(data[4*i:]))
		}
	default:
		return 0, 0, fmt.Errorf("%s: %w: data mode %d in response", op, ErrProtocol, resp[1])
	}

	klog.V(1).Infof("%s: lane %d, %d pixels declared, %d decoded (%s)", op, lane, count, n, mode)
	return count, lane, nil
}

// firstLane returns the index of the first set bit across the 4-word lane
// mask, or -1 when the mask is empty.
func firstLane(mask [4]uint32) int {
	for i, w := range mask {
		if w != 0 {
			return 32*i + bits.TrailingZeros32(w)
		}
	}
	return -1
}
