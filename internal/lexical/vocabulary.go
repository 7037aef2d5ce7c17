package lexical

// DefaultSynonyms is the built-in agricultural vocabulary: crops, deficiency symptoms
// and pesticide/fertilizer categories. Keys and values are normalized on table construction.
var DefaultSynonyms = map[string][]string{
	// crops
	"قمح":    {"القمح", "سماد قمح", "حبوب"},
	"القمح":  {"قمح", "سماد قمح"},
	"شعير":   {"الشعير", "حبوب"},
	"ذره":    {"الذرة", "ذرة صفراء", "ذرة شامية"},
	"ارز":    {"الأرز", "رز"},
	"رز":     {"ارز", "الأرز"},
	"طماطم":  {"بندورة", "الطماطم"},
	"بندوره": {"طماطم", "الطماطم"},
	"بطاطس":  {"بطاطا", "البطاطس"},
	"بطاطا":  {"بطاطس"},
	"خيار":   {"الخيار", "قثاء"},
	"فلفل":   {"الفلفل", "فليفلة"},
	"نخيل":   {"نخل", "تمر", "النخيل"},
	"نخل":    {"نخيل", "تمر"},
	"زيتون":  {"الزيتون"},
	"موالح":  {"حمضيات", "برتقال", "ليمون"},
	"حمضيات": {"موالح", "برتقال", "ليمون"},
	"عنب":    {"العنب", "كرمة"},
	"برسيم":  {"اعلاف", "البرسيم"},
	"wheat":  {"قمح"},
	"tomato": {"طماطم"},
	"potato": {"بطاطس"},
	"corn":   {"ذرة"},
	"maize":  {"ذرة"},
	"rice":   {"ارز"},
	"citrus": {"موالح"},
	"palm":   {"نخيل"},
	"olive":  {"زيتون"},
	"grapes": {"عنب"},

	// symptoms
	"اصفرار":    {"صفراء", "اصفر", "نقص نيتروجين", "نقص حديد"},
	"صفراء":     {"اصفرار", "نقص نيتروجين"},
	"اصفر":      {"اصفرار", "نقص نيتروجين"},
	"ذبول":      {"ذابل", "عطش", "تعفن جذور"},
	"تبقع":      {"بقع", "تبقعات", "فطريات"},
	"بقع":       {"تبقع", "فطريات", "مبيد فطري"},
	"تعفن":      {"عفن", "مبيد فطري"},
	"عفن":       {"تعفن", "مبيد فطري"},
	"تجعد":      {"تجعد الاوراق", "فيروس", "حشرات ماصة"},
	"تساقط":     {"تساقط الازهار", "بورون", "كالسيوم"},
	"حشرات":     {"مبيد حشري", "افات"},
	"دوده":      {"يرقات", "مبيد حشري"},
	"نيماتودا":  {"مبيد نيماتودا", "ديدان ثعبانية"},
	"yellowing": {"اصفرار", "nitrogen"},
	"wilting":   {"ذبول"},
	"fungus":    {"مبيد فطري", "fungicide"},
	"aphids":    {"حشرات ماصة", "insecticide"},

	// product categories
	"سماد":        {"اسمدة", "مخصبات", "تسميد"},
	"اسمده":       {"سماد", "مخصبات"},
	"مبيد":        {"مبيدات", "مكافحة"},
	"مبيدات":      {"مبيد", "مكافحة"},
	"فطري":        {"مبيد فطري", "فطريات"},
	"حشري":        {"مبيد حشري"},
	"نيتروجين":    {"يوريا", "سماد نيتروجيني", "نترات"},
	"يوريا":       {"نيتروجين", "سماد نيتروجيني"},
	"بوتاسيوم":    {"سلفات البوتاسيوم", "بوتاس"},
	"فوسفور":      {"سوبر فوسفات", "فوسفات"},
	"حديد":        {"حديد مخلبي", "عناصر صغرى"},
	"بذور":        {"تقاوي", "شتلات"},
	"تقاوي":       {"بذور"},
	"fertilizer":  {"سماد", "اسمدة"},
	"pesticide":   {"مبيد"},
	"insecticide": {"مبيد حشري"},
	"fungicide":   {"مبيد فطري"},
	"herbicide":   {"مبيد حشائش"},
	"seeds":       {"بذور", "تقاوي"},
}
