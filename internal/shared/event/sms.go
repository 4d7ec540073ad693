package event

const SMSDispatchDestination string = "smsotp.sms.dispatch"
const SMSDispatchConsumerDispatcher string = "smsotp_sms_dispatcher"
