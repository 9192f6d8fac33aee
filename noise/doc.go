// Package noise orchestrates the noise-removal pipeline for ocean
// bottom seismometer records: day-long records are segmented into
// windows, screened for transients, averaged into spectral estimates,
// and combined into daily or station-wide transfer functions that
// predict the tilt and compliance noise on the vertical channel. Event
// records are then corrected by subtracting the prediction.
package noise
