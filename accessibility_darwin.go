package main

/*
#cgo darwin CFLAGS: -x objective-c
#cgo darwin LDFLAGS: -framework ApplicationServices -framework CoreFoundation -framework Foundation
#include <stdlib.h>
#include <stdbool.h>
#include <ApplicationServices/ApplicationServices.h>

enum {
    ctxOK         = 0,
    ctxNotTrusted = 1,
    ctxNoFocus    = 2,
    ctxNoValue    = 3,
    ctxFailed     = 4,
};

static bool ax_trusted(bool prompt) {
    const void *keys[]   = { kAXTrustedCheckOptionPrompt };
    const void *values[] = { prompt ? kCFBooleanTrue : kCFBooleanFalse };
    CFDictionaryRef opts = CFDictionaryCreate(kCFAllocatorDefault,
        keys, values, 1,
        &kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
    bool trusted = AXIsProcessTrustedWithOptions(opts);
    CFRelease(opts);
    return trusted;
}

// copy_context_text returns up to max_chars UTF-16 units of the text that
// precedes the insertion cursor in the focused element, UTF-8 encoded and
// heap allocated. status receives one of the ctx* codes; the caller frees
// the result.
static char *copy_context_text(int max_chars, int *status) {
    *status = ctxFailed;
    if (!AXIsProcessTrusted()) {
        *status = ctxNotTrusted;
        return NULL;
    }

    AXUIElementRef systemWide = AXUIElementCreateSystemWide();
    AXUIElementRef focused = NULL;
    AXError err = AXUIElementCopyAttributeValue(systemWide,
        kAXFocusedUIElementAttribute, (CFTypeRef *)&focused);
    CFRelease(systemWide);
    if (err != kAXErrorSuccess || focused == NULL) {
        *status = ctxNoFocus;
        return NULL;
    }

    CFTypeRef valueRef = NULL;
    err = AXUIElementCopyAttributeValue(focused, kAXValueAttribute, &valueRef);
    if (err != kAXErrorSuccess || valueRef == NULL ||
        CFGetTypeID(valueRef) != CFStringGetTypeID()) {
        if (valueRef) CFRelease(valueRef);
        CFRelease(focused);
        *status = ctxNoValue;
        return NULL;
    }
    CFStringRef value = (CFStringRef)valueRef;
    CFIndex len = CFStringGetLength(value);

    // Cursor position = start of the selected text range. Elements that
    // expose a value but no range are treated as cursor-at-end.
    CFIndex cursor = len;
    CFTypeRef rangeRef = NULL;
    if (AXUIElementCopyAttributeValue(focused, kAXSelectedTextRangeAttribute,
            &rangeRef) == kAXErrorSuccess && rangeRef != NULL) {
        CFRange sel;
        if (AXValueGetValue((AXValueRef)rangeRef, kAXValueTypeCFRange, &sel) &&
            sel.location >= 0 && sel.location <= len) {
            cursor = sel.location;
        }
        CFRelease(rangeRef);
    }
    CFRelease(focused);

    CFIndex start = cursor - max_chars;
    if (start < 0) start = 0;
    // Never start on the low half of a surrogate pair.
    if (start > 0 && start < len &&
        CFStringIsSurrogateLowCharacter(CFStringGetCharacterAtIndex(value, start))) {
        start++;
    }

    CFStringRef slice = CFStringCreateWithSubstring(kCFAllocatorDefault,
        value, CFRangeMake(start, cursor - start));
    CFRelease(value);
    if (slice == NULL) {
        return NULL;
    }

    CFIndex bufSize = CFStringGetMaximumSizeForEncoding(
        CFStringGetLength(slice), kCFStringEncodingUTF8) + 1;
    char *buf = malloc(bufSize);
    if (buf == NULL ||
        !CFStringGetCString(slice, buf, bufSize, kCFStringEncodingUTF8)) {
        free(buf);
        CFRelease(slice);
        return NULL;
    }
    CFRelease(slice);
    *status = ctxOK;
    return buf;
}
*/
import "C"
import "unsafe"

// axTrusted reports whether this process is a trusted accessibility client.
// When prompt is true and trust is absent, macOS shows the System Settings
// consent dialog as a side effect; the call itself still returns the current
// state immediately.
func axTrusted(prompt bool) bool {
	return bool(C.ax_trusted(C.bool(prompt)))
}

// readFocusedContext reads up to maxChars characters of text immediately
// preceding the insertion cursor in the currently focused element. The C
// buffer is copied into a Go string and freed before returning, so no
// ownership leaks across the boundary.
func readFocusedContext(maxChars int) (string, error) {
	var status C.int
	cstr := C.copy_context_text(C.int(maxChars), &status)
	if cstr != nil {
		defer C.free(unsafe.Pointer(cstr))
	}
	switch status {
	case C.ctxOK:
		return C.GoString(cstr), nil
	case C.ctxNotTrusted:
		return "", ErrNotTrusted
	case C.ctxNoFocus:
		return "", ErrNoFocusedElement
	case C.ctxNoValue:
		return "", ErrNoTextValue
	default:
		return "", ErrContextUnavailable
	}
}

// axTrustChecker is the production trustChecker backend.
type axTrustChecker struct{}

func (axTrustChecker) Trusted(prompt bool) bool { return axTrusted(prompt) }

// axContextSource is the production contextSource backend.
type axContextSource struct{}

func (axContextSource) ReadBeforeCursor(maxChars int) (string, error) {
	return readFocusedContext(maxChars)
}
