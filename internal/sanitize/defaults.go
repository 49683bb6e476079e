package sanitize

// defaultTrackingParams is the seed block list used when the user has no
// customized list, and the list restored by a reset.
var defaultTrackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"_ga", "ga_source", "ga_medium", "ga_term", "ga_content", "ga_campaign", "ga_place",
	"fbclid", "gclid", "msclkid", "dclid", "zanpid", "cjevent", "cjdata",
	"aff", "affiliate", "affiliate_id", "ref", "referral", "source", "trk", "trkid",
	"trkcampaign", "mc_cid", "mc_eid", "igshid", "si", "yclid", "_hsenc", "_hsmi",
	"hsctatracking", "mkt_tok", "vero_conv", "vero_id", "trk_contact", "trk_msg",
	"trk_module", "trk_sid", "echobox", "cid", "gad_campaignid", "gbraid", "gad_source",
	"gclsrc",
}

const (
	// TimestampKey is the playback offset parameter kept on video hosts
	TimestampKey = "t"
)

// videoHostFragments identify the video hosting family whose timestamp
// parameter is preserved
var videoHostFragments = []string{"youtube.com", "youtu.be"}

// DefaultParams returns a copy of the seed tracking parameter names
func DefaultParams() []string {
	out := make([]string, len(defaultTrackingParams))
	copy(out, defaultTrackingParams)
	return out
}
