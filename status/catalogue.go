package status

import (
	"fmt"
	"strings"
)

// Description is the human readable title and explanation of a status class
// or subject.detail pair.
type Description struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Detail explains a full status code by class and by subject.detail.
type Detail struct {
	Code    string      `json:"code"`
	Class   Description `json:"class"`
	Subject Description `json:"subject"`
}

var classes = map[string]Description{
	"2": {"Success", "The DSN is reporting a positive delivery action. Detail sub-codes may provide notification of transformations required for delivery."},
	"4": {"Persistent Transient Failure", "The message as sent is valid, but persistence of some temporary condition has caused abandonment or delay of attempts to send it. Sending in the future may be successful."},
	"5": {"Permanent Failure", "The failure is not likely to be resolved by resending the message in the current form. Some change to the message or the destination must be made for successful delivery."},
}

var subjects = map[string]Description{
	"0.0": {"Other undefined Status", "Used for all errors for which only the class of the error is known."},

	"1.0":  {"Other address status", "Something about the address specified in the message caused this DSN."},
	"1.1":  {"Bad destination mailbox address", "The mailbox specified in the address does not exist. The address portion to the left of the \"@\" sign is invalid."},
	"1.2":  {"Bad destination system address", "The destination system does not exist or is incapable of accepting mail. The address portion to the right of the \"@\" is invalid for mail."},
	"1.3":  {"Bad destination mailbox address syntax", "The destination address was syntactically invalid."},
	"1.4":  {"Destination mailbox address ambiguous", "The mailbox address as specified matches one or more recipients on the destination system."},
	"1.5":  {"Destination address valid", "The mailbox address as specified was valid. Used for positive delivery reports."},
	"1.6":  {"Destination mailbox has moved, No forwarding address", "The mailbox address was at one time valid, but mail is no longer being accepted for it."},
	"1.7":  {"Bad sender's mailbox address syntax", "The sender's address was syntactically invalid."},
	"1.8":  {"Bad sender's system address", "The sender's system does not exist or is incapable of accepting return mail."},
	"1.9":  {"Message relayed to non-compliant mailer", "The mailbox address was valid, but the message has been relayed to a system that does not speak this protocol."},
	"1.10": {"Recipient address has null MX", "The domain of the recipient address publishes a null MX record and does not accept mail."},

	"2.0": {"Other or undefined mailbox status", "The mailbox exists, but something about the destination mailbox has caused the sending of this DSN."},
	"2.1": {"Mailbox disabled, not accepting messages", "The mailbox exists, but is not accepting messages."},
	"2.2": {"Mailbox full", "The user has exceeded a per-mailbox administrative quota or physical capacity."},
	"2.3": {"Message length exceeds administrative limit", "A per-mailbox administrative message length limit has been exceeded."},
	"2.4": {"Mailing list expansion problem", "The mailbox is a mailing list address and the mailing list was unable to be expanded."},

	"3.0": {"Other or undefined mail system status", "The destination system exists and normally accepts mail, but something about the system has caused the generation of this DSN."},
	"3.1": {"Mail system full", "Mail system storage has been exceeded."},
	"3.2": {"System not accepting network messages", "The host on which the mailbox is resident is not accepting messages."},
	"3.3": {"System not capable of selected features", "Selected features specified for the message are not supported by the destination system."},
	"3.4": {"Message too big for system", "The message is larger than the per-message size limit."},
	"3.5": {"System incorrectly configured", "The system is not configured in a manner that will permit it to accept this message."},
	"3.6": {"Requested priority was changed", "The message was accepted for relay or delivery, but the requested priority was not honoured."},

	"4.0": {"Other or undefined network or routing status", "Something went wrong with the networking, but it is not clear what the problem is."},
	"4.1": {"No answer from host", "The outbound connection attempt was not answered."},
	"4.2": {"Bad connection", "The outbound connection was established, but was unable to complete the message transaction."},
	"4.3": {"Directory server failure", "The network system was unable to forward the message because a directory server was unavailable."},
	"4.4": {"Unable to route", "The mail system was unable to determine the next hop for the message."},
	"4.5": {"Mail system congestion", "The mail system was unable to deliver the message because the mail system was congested."},
	"4.6": {"Routing loop detected", "A routing loop caused the message to be forwarded too many times."},
	"4.7": {"Delivery time expired", "The message was considered too old by the rejecting system."},

	"5.0": {"Other or undefined protocol status", "Something was wrong with the protocol necessary to deliver the message to the next hop."},
	"5.1": {"Invalid command", "A mail transaction protocol command was issued which was either out of sequence or unsupported."},
	"5.2": {"Syntax error", "A mail transaction protocol command was issued which could not be interpreted."},
	"5.3": {"Too many recipients", "More recipients were specified for the message than could have been delivered by the protocol."},
	"5.4": {"Invalid command arguments", "A valid mail transaction protocol command was issued with invalid arguments."},
	"5.5": {"Wrong protocol version", "A protocol version mis-match existed which could not be automatically resolved."},
	"5.6": {"Authentication Exchange line is too long", "The server failed the AUTH command because the client response was longer than the available buffer."},

	"6.0":  {"Other or undefined media error", "Something about the content of a message caused it to be considered undeliverable."},
	"6.1":  {"Media not supported", "The media of the message is not supported by the delivery protocol or the next system in the forwarding path."},
	"6.2":  {"Conversion required and prohibited", "The content of the message must be converted before it can be delivered and such conversion is not permitted."},
	"6.3":  {"Conversion required but not supported", "The message content must be converted in order to be forwarded but such conversion is not possible."},
	"6.4":  {"Conversion with loss performed", "Delivery required a conversion in which some data was lost."},
	"6.5":  {"Conversion Failed", "A conversion was required but was unsuccessful."},
	"6.6":  {"Message content not available", "The message content could not be fetched from a remote system."},
	"6.7":  {"Non-ASCII addresses not permitted for that sender/recipient", "A MAIL or RCPT command used a non-ASCII address that is not permitted."},
	"6.8":  {"UTF-8 string reply is required, but not permitted by the SMTP client", "A reply containing a UTF-8 string is required to show the mailbox name, but the client does not permit it."},
	"6.9":  {"UTF-8 header message cannot be transferred", "The transaction failed after the final \".\" of the DATA command."},
	"6.10": {"", "Duplicate of X.6.8, deprecated."},

	"7.0":  {"Other or undefined security status", "Something related to security caused the message to be returned."},
	"7.1":  {"Delivery not authorized, message refused", "The sender is not authorized to send to the destination. This can be the result of per-host or per-recipient filtering."},
	"7.2":  {"Mailing list expansion prohibited", "The sender is not authorized to send a message to the intended mailing list."},
	"7.3":  {"Security conversion required but not possible", "A conversion from one secure messaging protocol to another was required for delivery and was not possible."},
	"7.4":  {"Security features not supported", "A message contained security features that could not be supported on the delivery protocol."},
	"7.5":  {"Cryptographic failure", "A transport system was unable to validate or decrypt the message because necessary information was missing or invalid."},
	"7.6":  {"Cryptographic algorithm not supported", "A transport system was unable to validate or decrypt the message because the algorithm was not supported."},
	"7.7":  {"Message integrity failure", "A transport system was unable to validate the message because it was corrupted or altered."},
	"7.8":  {"Authentication credentials invalid", "Authentication failed due to invalid or insufficient credentials."},
	"7.9":  {"Authentication mechanism is too weak", "The selected authentication mechanism is weaker than server policy permits for that user."},
	"7.10": {"Encryption Needed", "An external strong privacy layer is needed in order to use the requested authentication mechanism."},
	"7.11": {"Encryption required for requested authentication mechanism", "The selected authentication mechanism may only be used over an encrypted connection."},
	"7.12": {"A password transition is needed", "The user needs to transition to the selected authentication mechanism."},
	"7.13": {"User Account Disabled", "Authentication succeeded against a disabled account."},
	"7.14": {"Trust relationship required", "The submission server requires a configured trust relationship with a third-party server."},
	"7.15": {"Priority Level is too low", "The specified priority level is below the lowest priority acceptable for the receiving server."},
	"7.16": {"Message is too big for the specified priority", "The message is too big for the specified priority."},
	"7.17": {"Mailbox owner has changed", "The intended recipient mailbox has not been under continuous ownership since the specified date."},
	"7.18": {"Domain owner has changed", "The owner of the recipient domain has changed since the specified date."},
	"7.19": {"RRVS test cannot be completed", "The required timestamp was not recorded, so the RRVS evaluation cannot be completed."},
	"7.20": {"No passing DKIM signature found", "The message did not carry a DKIM signature that passed verification."},
	"7.21": {"No acceptable DKIM signature found", "The message carried passing DKIM signatures, but none was acceptable to the receiver."},
	"7.22": {"No valid author-matched DKIM signature found", "No passing DKIM signature matched the author of the message."},
	"7.23": {"SPF validation failed", "The message was rejected because of an SPF failure."},
	"7.24": {"SPF validation error", "Evaluating SPF produced a temporary or permanent error."},
	"7.25": {"Reverse DNS validation failed", "The sending host has no valid reverse DNS record."},
	"7.26": {"Multiple authentication checks failed", "The message failed more than one message authentication check."},
	"7.27": {"Sender address has null MX", "The domain of the sender address publishes a null MX record."},
}

// Describe looks up the class and subject.detail descriptions of code.
// It reports false when code does not contain a recognizable status code.
func Describe(code string) (Detail, bool) {
	c := Format(code)
	if c.IsZero() {
		return Detail{}, false
	}
	parts := strings.SplitN(c.Code, ".", 3)
	return Detail{
		Code:    c.Code,
		Class:   classes[parts[0]],
		Subject: subjects[parts[1]+"."+parts[2]],
	}, true
}

// Messages renders the description of code as one line of text, or "" when
// code is not recognizable.
func Messages(code string) string {
	d, ok := Describe(code)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s - %s %s - %s", d.Class.Title, d.Class.Text, d.Subject.Title, d.Subject.Text)
}
