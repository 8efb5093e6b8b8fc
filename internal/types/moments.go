package types

// MomentSelectionPrompt instructs the LLM to pick GIF-worthy moments
// from a transcript. Formatted with (minSeconds, maxSeconds, maxCaptionLen,
// transcript text).
var MomentSelectionPrompt = `You are a short-form video editor. Below is a timestamped transcript of a video.
Pick the moments that would make the best looping GIFs.

Rules:
1. Each moment must be a self-contained beat, between %d and %d seconds long.
2. Give each moment a punchy caption of at most %d characters, suitable for overlaying on the GIF.
3. Score each moment with a confidence between 0 and 1.
4. Respond with a strict JSON array only, no prose.

Output JSON structure:
[
  {
    "start_time": 12.5,
    "end_time": 18.0,
    "caption": "caption text",
    "confidence": 0.92
  }
]

Transcript:
%s
`
