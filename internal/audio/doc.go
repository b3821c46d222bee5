// Package audio loads and plays pronunciation assets.
//
// It uses the beep library to decode WAV, OGG and MP3 files into cached
// buffers. Each Load returns a Track, a controllable stream over a cached
// buffer that can be started, paused, rewound and released. The Manager
// resolves asset references against the configured asset directory and
// satisfies playback.AudioPlayer.
package audio
