package main

/*
#cgo darwin CFLAGS: -x objective-c
#cgo darwin LDFLAGS: -framework ApplicationServices -framework CoreGraphics -framework CoreFoundation
#include <stdbool.h>
#include <ApplicationServices/ApplicationServices.h>

// post_key_chunk types one chunk of UTF-16 text as a key-down/key-up pair.
// The events carry the text as a unicode payload rather than a key code, so
// any character types regardless of keyboard layout. Returns false only if
// event construction fails; CGEventPost itself has no failure signal.
static bool post_key_chunk(const UniChar *chars, int len) {
    CGEventRef down = CGEventCreateKeyboardEvent(NULL, 0, true);
    CGEventRef up   = CGEventCreateKeyboardEvent(NULL, 0, false);
    if (down == NULL || up == NULL) {
        if (down) CFRelease(down);
        if (up) CFRelease(up);
        return false;
    }
    CGEventKeyboardSetUnicodeString(down, len, chars);
    CGEventKeyboardSetUnicodeString(up, len, chars);
    CGEventPost(kCGSessionEventTap, down);
    CGEventPost(kCGSessionEventTap, up);
    CFRelease(down);
    CFRelease(up);
    return true;
}
*/
import "C"
import (
	"time"
	"unicode/utf16"
	"unsafe"
)

// postKeystrokes synthesizes keyboard events for text and posts them to the
// session event tap, in chunks of at most keyChunkLimit UTF-16 units (the
// CGEvent unicode payload ceiling). A delay between chunks keeps slow
// targets from dropping input. Posting succeeds even if the focused app
// ignores the events — delivery is best-effort by design of the event tap.
func postKeystrokes(text string, chunkDelay time.Duration) error {
	if text == "" {
		return nil
	}
	units := utf16.Encode([]rune(text))
	for i, chunk := range chunkUTF16(units, keyChunkLimit) {
		if i > 0 && chunkDelay > 0 {
			time.Sleep(chunkDelay)
		}
		ok := C.post_key_chunk(
			(*C.UniChar)(unsafe.Pointer(&chunk[0])), C.int(len(chunk)))
		if !bool(ok) {
			return ErrEventCreation
		}
	}
	return nil
}

// cgEventPoster is the production keystrokePoster backend.
type cgEventPoster struct{}

func (cgEventPoster) Post(text string, chunkDelay time.Duration) error {
	return postKeystrokes(text, chunkDelay)
}
