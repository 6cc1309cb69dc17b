// Package camera opens the local video device with gocv and exposes its current picture.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"attendcam/internal/frame"

	"gocv.io/x/gocv"
)

// ErrUnavailable is returned when the device cannot be opened, either because it does
// not exist or because access was denied.
var ErrUnavailable = errors.New("camera unavailable")

// Handle is an open video stream.
type Handle struct {
	device  int
	capture *gocv.VideoCapture
	mat     gocv.Mat
	mu      sync.Mutex
}

// Device acquires the video device with the given index.
type Device struct {
	Index int
}

// Acquire opens the device and asks for width x height. The device may grant a
// different resolution; Frame always reports the actual one.
func (d Device) Acquire(ctx context.Context, width, height int) (frame.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(d.Index, width, height)
}

// Open opens a video device directly.
func Open(device, width, height int) (*Handle, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrUnavailable, device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %d could not be opened", ErrUnavailable, device)
	}

	if width > 0 && height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	return &Handle{
		device:  device,
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

// Frame grabs the current picture. It returns nil while the device delivers no data,
// e.g. right after opening or when the device sleeps.
func (h *Handle) Frame() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ok := h.capture.Read(&h.mat); !ok || h.mat.Empty() {
		return nil
	}

	img, err := h.mat.ToImage()
	if err != nil {
		return nil
	}
	return img
}

// Resolution reports the resolution the device actually granted.
func (h *Handle) Resolution() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int(h.capture.Get(gocv.VideoCaptureFrameWidth)), int(h.capture.Get(gocv.VideoCaptureFrameHeight))
}

// Device returns the index of the opened device.
func (h *Handle) Device() int {
	return h.device
}

// Close releases the device.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.mat.Close()
	return h.capture.Close()
}
