package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResumeText = "Contact: jane@example.com, (555) 123-4567. Skills: Python, React, AWS. Experience: 5 years as engineer."

func TestExtractContacts_SampleResume(t *testing.T) {
	info := ExtractContacts(sampleResumeText)

	assert.Equal(t, []string{"jane@example.com"}, info.Emails)
	require.Len(t, info.Phones, 1)
	assert.Equal(t, "5551234567", info.Phones[0])
	assert.Empty(t, info.LinkedIn)
	assert.Empty(t, info.GitHub)
	assert.False(t, info.Empty())
}

func TestExtractContacts_Emails(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single address",
			text: "reach me at john.doe+jobs@mail.example.org today",
			want: []string{"john.doe+jobs@mail.example.org"},
		},
		{
			name: "duplicates are kept in order",
			text: "a@b.io then c@d.com then a@b.io",
			want: []string{"a@b.io", "c@d.com", "a@b.io"},
		},
		{
			name: "ascii word boundary after non-ascii letter",
			text: "ñjane@example.com",
			want: []string{"jane@example.com"},
		},
		{
			name: "single letter tld rejected",
			text: "broken@host.x",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ExtractContacts(tt.text)
			assert.Equal(t, tt.want, info.Emails)
		})
	}
}

func TestExtractContacts_Phones(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "dotted",
			text: "Phone 555.123.4567",
			want: []string{"5551234567"},
		},
		{
			name: "country code",
			text: "Mobile: +1 555-123-4567",
			want: []string{"+1 5551234567"},
		},
		{
			name: "bare digits",
			text: "call 5551234567 now",
			want: []string{"5551234567"},
		},
		{
			name: "embedded in a longer number",
			text: "Order #12345551234567 shipped",
			want: nil,
		},
		{
			name: "two numbers",
			text: "work (555) 123-4567 home 555-987-6543",
			want: []string{"5551234567", "5559876543"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ExtractContacts(tt.text)
			assert.Equal(t, tt.want, info.Phones)
		})
	}
}

func TestExtractContacts_LinkedInSuppressesWebsite(t *testing.T) {
	info := ExtractContacts("Profiles: linkedin.com/in/alice alice.com")

	assert.Equal(t, []string{"linkedin.com/in/alice"}, info.LinkedIn)
	assert.Equal(t, []string{"alice.com"}, info.Websites)
}

func TestExtractContacts_GitHubCaseInsensitive(t *testing.T) {
	info := ExtractContacts("Code at GitHub.com/Alice and https://www.alice.io/blog")

	assert.Equal(t, []string{"GitHub.com/Alice"}, info.GitHub)
	assert.Equal(t, []string{"https://www.alice.io/blog"}, info.Websites)
}

func TestExtractContacts_LinkedInWithoutPath(t *testing.T) {
	info := ExtractContacts("see LINKEDIN.COM/company/acme")

	assert.Equal(t, []string{"LINKEDIN.COM/company/acme"}, info.LinkedIn)
	assert.Empty(t, info.Websites)
}

func TestExtractContacts_NoneDetected(t *testing.T) {
	info := ExtractContacts("Just a paragraph of prose without anything to reach.")

	assert.True(t, info.Empty())
}
