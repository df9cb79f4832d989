package listing

import "testing"

func TestRepresentativeHoursPrefersEarliestWeekday(t *testing.T) {
	hours := map[string]string{
		"Sunday":  "10:00 AM - 8:00 PM",
		"Tuesday": "9:00 AM - 11:00 PM",
	}
	opens, closes := RepresentativeHours(hours)
	if opens != "9:00 AM" || closes != "11:00 PM" {
		t.Fatalf("unexpected hours: %q / %q", opens, closes)
	}
}

func TestRepresentativeHoursSeparators(t *testing.T) {
	cases := []struct {
		name string
		span string
		open string
		shut string
	}{
		{"en-dash", "9:00–17:00", "9:00", "17:00"},
		{"spaced hyphen", "08:30 - 22:00", "08:30", "22:00"},
		{"bare hyphen", "9-5", "9", "5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opens, closes := RepresentativeHours(map[string]string{"monday": tc.span})
			if opens != tc.open || closes != tc.shut {
				t.Fatalf("got %q / %q, want %q / %q", opens, closes, tc.open, tc.shut)
			}
		})
	}
}

func TestRepresentativeHoursUnparseable(t *testing.T) {
	opens, closes := RepresentativeHours(map[string]string{"friday": "Closed"})
	if opens != "" || closes != "" {
		t.Fatalf("expected empty hours, got %q / %q", opens, closes)
	}
	opens, closes = RepresentativeHours(nil)
	if opens != "" || closes != "" {
		t.Fatalf("expected empty hours for nil map")
	}
}

func TestMergeImagesDeduplicates(t *testing.T) {
	c := Candidate{Images: []string{"https://a/1.jpg", ""}}
	c.MergeImages([]string{"https://a/2.jpg", "https://a/1.jpg", " "})
	if len(c.Images) != 2 {
		t.Fatalf("expected 2 images, got %v", c.Images)
	}
	if c.Images[0] != "https://a/1.jpg" || c.Images[1] != "https://a/2.jpg" {
		t.Fatalf("unexpected order: %v", c.Images)
	}
}
